package bootstrap

import (
	"context"

	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/discovery"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/iamrole"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/resolver"
	"github.com/giantswarm/karpenter-bootstrap/pkg/config"
	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
	"github.com/giantswarm/karpenter-bootstrap/pkg/key"
	"github.com/giantswarm/karpenter-bootstrap/pkg/policy"
)

type Config struct {
	Settings config.Settings

	Resolver        resolver.Client
	IAMRoleClient   iamrole.Client
	DiscoveryClient discovery.Client
}

type Bootstrapper interface {
	Run(ctx context.Context) error
}

func New(config Config) (Bootstrapper, error) {
	err := config.Settings.Validate()
	if err != nil {
		return nil, microerror.Mask(err)
	}
	if config.Resolver == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "%T.Resolver must not be empty", config)
	}
	if config.IAMRoleClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "%T.IAMRoleClient must not be empty", config)
	}
	if config.DiscoveryClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "%T.DiscoveryClient must not be empty", config)
	}

	return &bootstrapper{
		settings:        config.Settings,
		resolver:        config.Resolver,
		iamRoleClient:   config.IAMRoleClient,
		discoveryClient: config.DiscoveryClient,
	}, nil
}

type bootstrapper struct {
	settings        config.Settings
	resolver        resolver.Client
	iamRoleClient   iamrole.Client
	discoveryClient discovery.Client
}

// Run executes the bootstrap pipeline strictly in sequence: resolve derived
// values, render policy documents, apply IAM changes, tag discoverable
// resources. Every step is idempotent, so a failed run is fixed by fixing
// the root cause and rerunning. There is no rollback of applied steps.
func (b *bootstrapper) Run(ctx context.Context) (err error) {
	logger := log.FromContext(ctx)
	logger.Info("Started bootstrapping Karpenter resources", "cluster-name", b.settings.ClusterName)
	defer func() {
		if err == nil {
			logger.Info("Finished bootstrapping Karpenter resources", "cluster-name", b.settings.ClusterName)
		} else {
			logger.Error(err, "Failed to bootstrap Karpenter resources", "cluster-name", b.settings.ClusterName)
		}
	}()

	//
	// Resolve derived values from live AWS state. A failure here aborts the
	// run before any write is attempted.
	//
	resolveInput := resolver.ResolveInput{
		ClusterName:       b.settings.ClusterName,
		Region:            b.settings.Region,
		KubernetesVersion: b.settings.KubernetesVersion,
	}
	derived, err := b.resolver.Resolve(ctx, resolveInput)
	if err != nil {
		return microerror.Mask(err)
	}

	//
	// Render the three policy documents and emit them as observable output.
	//
	documents, err := renderDocuments(b.settings, derived)
	if err != nil {
		return microerror.Mask(err)
	}

	err = emitDocuments(ctx, b.settings.OutputDir, documents)
	if err != nil {
		return microerror.Mask(err)
	}

	//
	// Provision the node role with its fixed set of managed policies.
	//
	nodeRoleName := key.NodeRoleName(b.settings.ClusterName)
	{
		ensureRoleInput := iamrole.EnsureRoleInput{
			RoleName:            nodeRoleName,
			Description:         "Role assumed by EC2 instances that Karpenter launches",
			TrustPolicyDocument: string(documents.NodeTrustPolicy),
		}
		err = b.iamRoleClient.EnsureRole(ctx, ensureRoleInput)
		if err != nil {
			return microerror.Mask(err)
		}

		ensureAttachmentsInput := iamrole.EnsureManagedPolicyAttachmentsInput{
			RoleName:   nodeRoleName,
			PolicyARNs: key.ManagedNodePolicyARNs(b.settings.Partition),
		}
		err = b.iamRoleClient.EnsureManagedPolicyAttachments(ctx, ensureAttachmentsInput)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	//
	// Provision the controller role with its permission policy.
	//
	{
		ensureRoleInput := iamrole.EnsureRoleInput{
			RoleName:            key.ControllerRoleName(b.settings.ClusterName),
			Description:         "Role assumed by the Karpenter controller via its workload identity",
			TrustPolicyDocument: string(documents.ControllerTrustPolicy),
		}
		err = b.iamRoleClient.EnsureRole(ctx, ensureRoleInput)
		if err != nil {
			return microerror.Mask(err)
		}

		ensureInlinePolicyInput := iamrole.EnsureInlinePolicyInput{
			RoleName:       key.ControllerRoleName(b.settings.ClusterName),
			PolicyName:     key.ControllerPolicyName(b.settings.ClusterName),
			PolicyDocument: string(documents.ControllerPermissionPolicy),
		}
		err = b.iamRoleClient.EnsureInlinePolicy(ctx, ensureInlinePolicyInput)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	//
	// Tag subnets and security groups so Karpenter can discover them by tag
	// query at its own startup.
	//
	runInput := discovery.RunInput{
		ClusterName:            b.settings.ClusterName,
		ClusterSecurityGroupID: derived.ClusterSecurityGroupID,
	}
	runOutput, err := b.discoveryClient.Run(ctx, runInput)
	if err != nil {
		return microerror.Mask(err)
	}

	logger.Info("Tagged discoverable resources",
		"subnet-ids", runOutput.SubnetIDs,
		"security-group-ids", runOutput.SecurityGroupIDs)

	return nil
}

type renderedDocuments struct {
	NodeTrustPolicy            []byte
	ControllerTrustPolicy      []byte
	ControllerPermissionPolicy []byte
}

func renderDocuments(settings config.Settings, derived resolver.DerivedValues) (renderedDocuments, error) {
	nodeTrustPolicy, err := policy.NodeTrustPolicy().Render()
	if err != nil {
		return renderedDocuments{}, microerror.Mask(err)
	}

	controllerTrustPolicy, err := policy.ControllerTrustPolicy(settings, derived).Render()
	if err != nil {
		return renderedDocuments{}, microerror.Mask(err)
	}

	controllerPermissionPolicy, err := policy.ControllerPermissionPolicy(settings, derived).Render()
	if err != nil {
		return renderedDocuments{}, microerror.Mask(err)
	}

	return renderedDocuments{
		NodeTrustPolicy:            nodeTrustPolicy,
		ControllerTrustPolicy:      controllerTrustPolicy,
		ControllerPermissionPolicy: controllerPermissionPolicy,
	}, nil
}
