package config

import (
	"os"

	"github.com/giantswarm/microerror"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

const (
	defaultServiceAccount = "karpenter"
)

// Settings holds all values the bootstrap needs from the caller. It is
// populated once at startup and read-only afterwards.
type Settings struct {
	// ClusterName is the name of the EKS cluster that Karpenter is being
	// bootstrapped into. Every role name and discovery tag is derived from
	// it.
	ClusterName string

	// Namespace is the namespace the Karpenter controller runs in.
	Namespace string

	// ServiceAccount is the service account the controller runs as.
	ServiceAccount string

	// Partition is the AWS partition, e.g. "aws" or "aws-cn".
	Partition string

	// KubernetesVersion selects the EKS-optimized AMI parameter paths, e.g.
	// "1.29".
	KubernetesVersion string

	// Region overrides the region from the ambient AWS configuration when
	// set.
	Region string

	// AssumeRoleARN is an optional role that all AWS calls are made with.
	// The ambient credentials are used directly when empty.
	AssumeRoleARN string

	// OutputDir is the directory the rendered policy documents are written
	// to. Rendering to disk is skipped when empty.
	OutputDir string
}

// FromEnvironment returns Settings populated from environment variables,
// mirroring the variables the bootstrap has historically been driven by.
func FromEnvironment() Settings {
	serviceAccount := os.Getenv("KARPENTER_SERVICE_ACCOUNT")
	if serviceAccount == "" {
		serviceAccount = defaultServiceAccount
	}

	return Settings{
		ClusterName:       os.Getenv("CLUSTER_NAME"),
		Namespace:         os.Getenv("KARPENTER_NAMESPACE"),
		ServiceAccount:    serviceAccount,
		Partition:         os.Getenv("AWS_PARTITION"),
		KubernetesVersion: os.Getenv("K8S_VERSION"),
		Region:            os.Getenv("AWS_REGION"),
		AssumeRoleARN:     os.Getenv("AWS_ASSUME_ROLE_ARN"),
	}
}

// Validate fails on the first missing required setting, before any AWS call
// is made.
func (s Settings) Validate() error {
	if s.ClusterName == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.ClusterName must not be empty", s)
	}
	if s.Namespace == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.Namespace must not be empty", s)
	}
	if s.ServiceAccount == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.ServiceAccount must not be empty", s)
	}
	if s.Partition == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.Partition must not be empty", s)
	}
	if s.KubernetesVersion == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.KubernetesVersion must not be empty", s)
	}

	return nil
}
