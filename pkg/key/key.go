package key

import (
	"fmt"
)

const (
	// DiscoveryTagKey is the tag key Karpenter uses to discover subnets and
	// security groups at its own startup. The tag value is the cluster name.
	DiscoveryTagKey = "karpenter.sh/discovery"

	// NodePoolTagKey marks EC2 instances that are owned by a Karpenter node
	// pool. Termination permissions are scoped to this tag.
	NodePoolTagKey = "karpenter.sh/nodepool"

	// NodeClassTagKey marks instance profiles that are managed through an
	// EC2NodeClass.
	NodeClassTagKey = "karpenter.k8s.aws/ec2nodeclass"

	// RegionTagKey is the well-known topology tag carried by instance
	// profiles that Karpenter manages.
	RegionTagKey = "topology.kubernetes.io/region"
)

func NodeRoleName(clusterName string) string {
	return fmt.Sprintf("KarpenterNodeRole-%s", clusterName)
}

func NodeRoleARN(partition, accountID, clusterName string) string {
	return fmt.Sprintf("arn:%s:iam::%s:role/%s", partition, accountID, NodeRoleName(clusterName))
}

func ControllerRoleName(clusterName string) string {
	return fmt.Sprintf("KarpenterControllerRole-%s", clusterName)
}

func ControllerPolicyName(clusterName string) string {
	return fmt.Sprintf("KarpenterControllerPolicy-%s", clusterName)
}

func ClusterOwnedTagKey(clusterName string) string {
	return fmt.Sprintf("kubernetes.io/cluster/%s", clusterName)
}

func OIDCProviderARN(partition, accountID, oidcIssuerHost string) string {
	return fmt.Sprintf("arn:%s:iam::%s:oidc-provider/%s", partition, accountID, oidcIssuerHost)
}

// ServiceAccountSubject returns the workload identity subject that the
// controller trust policy is pinned to.
func ServiceAccountSubject(namespace, serviceAccount string) string {
	return fmt.Sprintf("system:serviceaccount:%s:%s", namespace, serviceAccount)
}

// ManagedNodePolicyARNs returns the fixed set of AWS managed policies that
// the node role needs so instances can join the cluster.
func ManagedNodePolicyARNs(partition string) []string {
	return []string{
		fmt.Sprintf("arn:%s:iam::aws:policy/AmazonEKSWorkerNodePolicy", partition),
		fmt.Sprintf("arn:%s:iam::aws:policy/AmazonEKS_CNI_Policy", partition),
		fmt.Sprintf("arn:%s:iam::aws:policy/AmazonEC2ContainerRegistryReadOnly", partition),
		fmt.Sprintf("arn:%s:iam::aws:policy/AmazonSSMManagedInstanceCore", partition),
	}
}
