package cloudrun

import (
	"fmt"
	"strconv"

	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/cloudrun"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/GregMSThompson/recovery-dashboard/infra/common"
	"github.com/GregMSThompson/recovery-dashboard/infra/secret"
)

type secretRefs struct {
	sheetsCredentialsName pulumi.StringOutput
	hasSheetsCredentials  bool
}

// serviceSpec describes one of the two containers built from this repo.
type serviceSpec struct {
	resourceName string
	imageName    string
	dockerfile   string
	alwaysOn     bool
	public       bool
	extraEnvs    cloudrun.ServiceTemplateSpecContainerEnvArray
}

// SetupCloudRun deploys the dashboard api and the background worker that
// keeps the live view warm and runs scheduled exports.
func SetupCloudRun(ctx *pulumi.Context, prov *gcp.Provider, apiSA *serviceaccount.Account, res ...pulumi.Resource) error {
	recCfg := config.New(ctx, "recovery")

	sr, err := createSecrets(ctx)
	if err != nil {
		return err
	}

	srv, err := enableCloudRun(ctx, prov)
	if err != nil {
		return err
	}

	specs := []serviceSpec{
		{
			resourceName: "api",
			imageName:    "recovery-api",
			dockerfile:   "../cmd/api/Dockerfile",
			public:       true,
		},
		{
			resourceName: "worker",
			imageName:    "recovery-worker",
			dockerfile:   "../cmd/service/Dockerfile",
			alwaysOn:     true,
			extraEnvs: cloudrun.ServiceTemplateSpecContainerEnvArray{
				&cloudrun.ServiceTemplateSpecContainerEnvArgs{
					Name:  pulumi.String("EXPORTSCHEDULE"),
					Value: pulumi.String(recCfg.Get("exportSchedule")),
				},
				&cloudrun.ServiceTemplateSpecContainerEnvArgs{
					Name:  pulumi.String("EXPORTDIR"),
					Value: pulumi.String("/tmp/exports"),
				},
			},
		},
	}

	for _, spec := range specs {
		img, err := buildImage(ctx, spec, res...)
		if err != nil {
			return err
		}

		svc, err := createCloudRunService(ctx, spec, img, apiSA, sr, prov, srv)
		if err != nil {
			return err
		}

		if spec.public {
			if err := setIAMAccessPolicy(ctx, spec, svc, prov); err != nil {
				return err
			}
		}
	}

	return nil
}

func buildImage(ctx *pulumi.Context, spec serviceSpec, res ...pulumi.Resource) (*docker.Image, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	hash, err := common.GenerateHash("../")
	if err != nil {
		return nil, err
	}

	return docker.NewImage(ctx, spec.resourceName+"Image", &docker.ImageArgs{
		Build: docker.DockerBuildArgs{
			Platform:   pulumi.String("linux/amd64"),
			Context:    pulumi.String(".."),            // build from repo root
			Dockerfile: pulumi.String(spec.dockerfile), // Dockerfile path relative to repo root
		},
		ImageName: pulumi.String(fmt.Sprintf("%s-docker.pkg.dev/%s/api/%s:%s", region, projectID, spec.imageName, hash)),
	},
		pulumi.DependsOn(res),
	)
}

func enableCloudRun(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "cloudRunService", &projects.ServiceArgs{
		Service: pulumi.String("run.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
}

// CreateServiceAccount creates the identity both services run as. It can
// read and write the record store in firestore.
func CreateServiceAccount(ctx *pulumi.Context, prov *gcp.Provider) (*serviceaccount.Account, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")

	apiSA, err := serviceaccount.NewAccount(ctx, "apiServiceAccount", &serviceaccount.AccountArgs{
		AccountId:   pulumi.String("recovery-service"),
		DisplayName: pulumi.String("Recovery Dashboard Service Account"),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	_, err = projects.NewIAMMember(ctx, "firestoreAccess", &projects.IAMMemberArgs{
		Role: pulumi.String("roles/datastore.user"), // Firestore read/write
		Member: apiSA.Email.ApplyT(func(email string) string {
			return fmt.Sprintf("serviceAccount:%s", email)
		}).(pulumi.StringOutput),
		Project: pulumi.String(projectID),
	},
		pulumi.Provider(prov),
	)
	if err != nil {
		return nil, err
	}

	return apiSA, nil
}

func createCloudRunService(ctx *pulumi.Context,
	spec serviceSpec,
	img *docker.Image,
	apiSA *serviceaccount.Account,
	sr *secretRefs,
	prov *gcp.Provider,
	res ...pulumi.Resource) (*cloudrun.Service, error) {
	gcpCfg := config.New(ctx, "gcp")
	crCfg := config.New(ctx, "cloudrun")
	recCfg := config.New(ctx, "recovery")

	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")
	minScale := crCfg.Require("minScale")
	maxScale := crCfg.Require("maxScale")
	cpu := crCfg.Require("cpu")
	memory := crCfg.Require("memory")
	concurrency := crCfg.Require("concurrency")
	logLevel := crCfg.Require("logLevel")
	timeout, _ := strconv.Atoi(crCfg.Require("timeout"))

	annotations := pulumi.StringMap{
		// Autoscaling bounds
		"autoscaling.knative.dev/minScale": pulumi.String(minScale),
		"autoscaling.knative.dev/maxScale": pulumi.String(maxScale),

		// Instance sizing
		"run.googleapis.com/cpu":    pulumi.String(cpu),
		"run.googleapis.com/memory": pulumi.String(memory),

		// Allow throttling when idle (reduces cost)
		"run.googleapis.com/cpu-throttling": pulumi.String("true"),

		// Set the number of concurrent requests per container
		"run.googleapis.com/container-concurrency": pulumi.String(concurrency),
	}
	if spec.public {
		// Enable Identity Platform (Firebase) authentication
		annotations["run.googleapis.com/launch-stage"] = pulumi.String("BETA")
		annotations["run.googleapis.com/identity-provider"] = pulumi.String("firebase")
	}
	if spec.alwaysOn {
		// The worker holds a firestore listener and a cron loop.
		annotations["autoscaling.knative.dev/minScale"] = pulumi.String("1")
		annotations["autoscaling.knative.dev/maxScale"] = pulumi.String("1")
		annotations["run.googleapis.com/cpu-throttling"] = pulumi.String("false")
	}

	envs := cloudrun.ServiceTemplateSpecContainerEnvArray{
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("PROJECTID"),
			Value: pulumi.String(projectID),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("REGION"),
			Value: pulumi.String(region),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("LOGLEVEL"),
			Value: pulumi.String(logLevel),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("STOREBACKEND"),
			Value: pulumi.String("firestore"),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("SYSTEMNAME"),
			Value: pulumi.String(recCfg.Get("systemName")),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("MONTHLYTARGET"),
			Value: pulumi.String(recCfg.Get("monthlyTarget")),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("AGENTTARGET"),
			Value: pulumi.String(recCfg.Get("agentTarget")),
		},
		&cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("SPREADSHEETID"),
			Value: pulumi.String(recCfg.Get("spreadsheetId")),
		},
	}
	if sr.hasSheetsCredentials {
		// The app reads the secret itself, so only the id is passed.
		envs = append(envs, &cloudrun.ServiceTemplateSpecContainerEnvArgs{
			Name:  pulumi.String("SHEETSCREDENTIALSSECRET"),
			Value: sr.sheetsCredentialsName,
		})
	}
	envs = append(envs, spec.extraEnvs...)

	container := &cloudrun.ServiceTemplateSpecContainerArgs{
		Image: img.ImageName,
		Envs:  envs,
	}
	if spec.public {
		container.Ports = cloudrun.ServiceTemplateSpecContainerPortArray{
			&cloudrun.ServiceTemplateSpecContainerPortArgs{
				ContainerPort: pulumi.Int(8080),
			},
		}
	}

	return cloudrun.NewService(ctx, spec.resourceName+"Service", &cloudrun.ServiceArgs{
		Location: pulumi.String(region),

		Template: &cloudrun.ServiceTemplateArgs{
			Metadata: &cloudrun.ServiceTemplateMetadataArgs{
				Annotations: annotations,
			},

			Spec: &cloudrun.ServiceTemplateSpecArgs{
				ServiceAccountName: apiSA.Email,
				TimeoutSeconds:     pulumi.Int(timeout),
				Containers:         cloudrun.ServiceTemplateSpecContainerArray{container},
			},
		},
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(res),
	)
}

func setIAMAccessPolicy(ctx *pulumi.Context, spec serviceSpec, svc *cloudrun.Service, prov *gcp.Provider) error {
	gcpCfg := config.New(ctx, "gcp")
	region := gcpCfg.Require("region")

	_, err := cloudrun.NewIamMember(ctx, spec.resourceName+"Invoker", &cloudrun.IamMemberArgs{
		Service:  svc.Name,
		Location: pulumi.String(region),
		Role:     pulumi.String("roles/run.invoker"),

		// Allow requests to reach Identity Platform (Firebase) auth
		Member: pulumi.String("allUsers"),
	},
		pulumi.Provider(prov),
	)
	return err
}

// createSecrets stores the Sheets service account key when one is
// configured. Without it the services fall back to their own identity.
func createSecrets(ctx *pulumi.Context) (*secretRefs, error) {
	sr := new(secretRefs)

	recCfg := config.New(ctx, "recovery")
	creds, err := recCfg.TrySecret("sheetsCredentials")
	if err != nil {
		return sr, nil
	}

	sr.sheetsCredentialsName, err = secret.AddSecret(ctx, "sheetsCredentialsSecret", "sheetsCredentials", creds)
	if err != nil {
		return nil, err
	}
	sr.hasSheetsCredentials = true

	return sr, nil
}
