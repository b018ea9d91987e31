package identity

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/identityplatform"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// SetupIdentity enables Identity Platform (firebase auth) with email sign in.
// Dashboard users are staff accounts, so self sign up stays off.
func SetupIdentity(ctx *pulumi.Context, prov *gcp.Provider) (*identityplatform.Config, error) {
	return identityplatform.NewConfig(ctx,
		"identityPlatformConfig",
		&identityplatform.ConfigArgs{
			SignIn: &identityplatform.ConfigSignInArgs{
				Email: &identityplatform.ConfigSignInEmailArgs{
					Enabled: pulumi.Bool(true),
				},
			},
			Client: &identityplatform.ConfigClientArgs{
				Permissions: &identityplatform.ConfigClientPermissionsArgs{
					DisabledUserSignup: pulumi.Bool(true),
				},
			},
		},
		pulumi.Provider(prov),
	)
}
