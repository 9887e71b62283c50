package discovery

type RunInput struct {
	ClusterName string

	// ClusterSecurityGroupID is the EKS-managed control plane security
	// group. It is always tagged, even when no node group exposes a launch
	// template, because new instances need it to reach the control plane.
	ClusterSecurityGroupID string
}

// RunOutput reports which resources carry the discovery tag after the pass.
type RunOutput struct {
	SubnetIDs        []string
	SecurityGroupIDs []string
}
