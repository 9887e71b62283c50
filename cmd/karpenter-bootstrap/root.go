package main

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/giantswarm/microerror"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/assumerole"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/discovery"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/iamrole"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/resolver"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/tags"
	"github.com/giantswarm/karpenter-bootstrap/pkg/bootstrap"
	"github.com/giantswarm/karpenter-bootstrap/pkg/config"
	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
	"github.com/giantswarm/karpenter-bootstrap/pkg/project"
)

func newRootCommand() *cobra.Command {
	settings := config.FromEnvironment()

	command := &cobra.Command{
		Use:           project.Name(),
		Short:         project.Description(),
		Version:       project.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings)
		},
	}

	flags := command.Flags()
	flags.StringVar(&settings.ClusterName, "cluster-name", settings.ClusterName, "Name of the EKS cluster to bootstrap Karpenter into.")
	flags.StringVar(&settings.Namespace, "namespace", settings.Namespace, "Namespace the Karpenter controller runs in.")
	flags.StringVar(&settings.ServiceAccount, "service-account", settings.ServiceAccount, "Service account the Karpenter controller runs as.")
	flags.StringVar(&settings.Partition, "partition", settings.Partition, "AWS partition, e.g. aws or aws-cn.")
	flags.StringVar(&settings.KubernetesVersion, "kubernetes-version", settings.KubernetesVersion, "Kubernetes version used for the EKS-optimized AMI lookup, e.g. 1.29.")
	flags.StringVar(&settings.Region, "region", settings.Region, "AWS region, defaults to the ambient AWS configuration.")
	flags.StringVar(&settings.AssumeRoleARN, "assume-role-arn", settings.AssumeRoleARN, "Optional role to assume for all AWS calls.")
	flags.StringVar(&settings.OutputDir, "output-dir", settings.OutputDir, "Directory to write the rendered policy documents to.")

	return command
}

func run(ctx context.Context, settings config.Settings) error {
	logger := zap.New()
	ctrl.SetLogger(logger)
	ctx = log.IntoContext(ctx, logger)

	err := settings.Validate()
	if err != nil {
		return microerror.Mask(err)
	}

	var loadOptions []func(*awsconfig.LoadOptions) error
	if settings.Region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(settings.Region))
	}
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return microerror.Mask(err)
	}
	if settings.Region == "" {
		settings.Region = awsConfig.Region
	}
	if settings.Region == "" {
		return microerror.Maskf(errors.InvalidConfigError, "region must be set via --region, AWS_REGION or the AWS configuration")
	}

	if settings.AssumeRoleARN != "" {
		assumeRoleClient, err := assumerole.NewClient(sts.NewFromConfig(awsConfig))
		if err != nil {
			return microerror.Mask(err)
		}
		awsConfig.Credentials = assumeRoleClient.CredentialsProvider(settings.AssumeRoleARN)
	}

	var resolverClient resolver.Client
	{
		resolverClient, err = resolver.NewClient(
			sts.NewFromConfig(awsConfig),
			eks.NewFromConfig(awsConfig),
			ssm.NewFromConfig(awsConfig),
		)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	var iamRoleClient iamrole.Client
	{
		iamRoleClient, err = iamrole.NewClient(iam.NewFromConfig(awsConfig))
		if err != nil {
			return microerror.Mask(err)
		}
	}

	var discoveryClient discovery.Client
	{
		ec2Client := ec2.NewFromConfig(awsConfig)

		tagsClient, err := tags.NewClient(ec2Client)
		if err != nil {
			return microerror.Mask(err)
		}

		discoveryClient, err = discovery.NewClient(eks.NewFromConfig(awsConfig), ec2Client, tagsClient)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	bootstrapper, err := bootstrap.New(bootstrap.Config{
		Settings:        settings,
		Resolver:        resolverClient,
		IAMRoleClient:   iamRoleClient,
		DiscoveryClient: discoveryClient,
	})
	if err != nil {
		return microerror.Mask(err)
	}

	return bootstrapper.Run(ctx)
}
