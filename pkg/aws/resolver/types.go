package resolver

type ResolveInput struct {
	ClusterName       string
	Region            string
	KubernetesVersion string
}

// DerivedValues holds everything that is computed from live AWS state rather
// than supplied directly. It is resolved once per run and passed by value
// into the policy builder and the discovery tagger.
type DerivedValues struct {
	Region          string
	AccountID       string
	ClusterARN      string
	ClusterEndpoint string

	// ClusterSecurityGroupID is the EKS-managed control plane security
	// group. New nodes need it to reach the API server.
	ClusterSecurityGroupID string

	// OIDCIssuerHost is the cluster's OIDC issuer with the scheme stripped,
	// since IAM policy condition keys are bare host+path strings.
	OIDCIssuerHost string

	// AMIIDByArch maps an architecture ("amd64", "arm64", "gpu") to the
	// recommended EKS-optimized AMI for the configured Kubernetes version.
	AMIIDByArch map[string]string
}
