package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/recovery-dashboard/infra/cloudrun"
	"github.com/GregMSThompson/recovery-dashboard/infra/docker"
	"github.com/GregMSThompson/recovery-dashboard/infra/firestore"
	"github.com/GregMSThompson/recovery-dashboard/infra/identity"
	"github.com/GregMSThompson/recovery-dashboard/infra/provider"
	"github.com/GregMSThompson/recovery-dashboard/infra/secret"
	"github.com/GregMSThompson/recovery-dashboard/infra/sheets"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the record store
		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// sheets api is only needed for published reports but costs nothing to enable
		sheetsSvc, err := sheets.EnableSheets(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx)
		if err != nil {
			return err
		}

		apiSA, err := cloudrun.CreateServiceAccount(ctx, prov)
		if err != nil {
			return err
		}

		// secrets must exist before the services that mount them
		if _, err = secret.SetupSecretManager(ctx, prov, apiSA); err != nil {
			return err
		}

		return cloudrun.SetupCloudRun(ctx, prov, apiSA, ident, db, sheetsSvc, repo)
	})
}
