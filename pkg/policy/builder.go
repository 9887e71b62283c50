package policy

import (
	"fmt"

	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/resolver"
	"github.com/giantswarm/karpenter-bootstrap/pkg/config"
	"github.com/giantswarm/karpenter-bootstrap/pkg/key"
)

// NodeTrustPolicy grants only the EC2 service principal the ability to
// assume the node role, so it is usable for instance bootstrap and nothing
// else.
func NodeTrustPolicy() Document {
	return Document{
		Version: documentVersion,
		Statement: []Statement{
			{
				Effect: EffectAllow,
				Principal: &Principal{
					Service: "ec2.amazonaws.com",
				},
				Action: StringOrSlice{"sts:AssumeRole"},
			},
		},
	}
}

// ControllerTrustPolicy grants web-identity-federated assumption of the
// controller role, pinned to the cluster's OIDC issuer, the standard STS
// audience and the exact Karpenter service account subject. No other
// workload identity in the cluster can assume the role.
func ControllerTrustPolicy(settings config.Settings, derived resolver.DerivedValues) Document {
	return Document{
		Version: documentVersion,
		Statement: []Statement{
			{
				Effect: EffectAllow,
				Principal: &Principal{
					Federated: key.OIDCProviderARN(settings.Partition, derived.AccountID, derived.OIDCIssuerHost),
				},
				Action: StringOrSlice{"sts:AssumeRoleWithWebIdentity"},
				Condition: Condition{
					"StringEquals": {
						fmt.Sprintf("%s:aud", derived.OIDCIssuerHost): "sts.amazonaws.com",
						fmt.Sprintf("%s:sub", derived.OIDCIssuerHost): key.ServiceAccountSubject(settings.Namespace, settings.ServiceAccount),
					},
				},
			},
		},
	}
}

// ControllerPermissionPolicy builds the permission policy for the controller
// role. Each Sid is an independent grant; the scoping of the termination,
// PassRole, DescribeCluster and instance-profile statements is what keeps a
// controller in one cluster from touching resources of another.
func ControllerPermissionPolicy(settings config.Settings, derived resolver.DerivedValues) Document {
	return Document{
		Version: documentVersion,
		Statement: []Statement{
			{
				Sid:    "Karpenter",
				Effect: EffectAllow,
				Action: StringOrSlice{
					"ssm:GetParameter",
					"ec2:DescribeImages",
					"ec2:RunInstances",
					"ec2:DescribeSubnets",
					"ec2:DescribeSecurityGroups",
					"ec2:DescribeLaunchTemplates",
					"ec2:DescribeInstances",
					"ec2:DescribeInstanceTypes",
					"ec2:DescribeInstanceTypeOfferings",
					"ec2:DescribeAvailabilityZones",
					"ec2:DeleteLaunchTemplate",
					"ec2:CreateTags",
					"ec2:CreateLaunchTemplate",
					"ec2:CreateFleet",
					"ec2:DescribeSpotPriceHistory",
					"pricing:GetProducts",
				},
				Resource: StringOrSlice{"*"},
			},
			{
				Sid:      "ConditionalEC2Termination",
				Effect:   EffectAllow,
				Action:   StringOrSlice{"ec2:TerminateInstances"},
				Resource: StringOrSlice{"*"},
				Condition: Condition{
					"StringLike": {
						fmt.Sprintf("ec2:ResourceTag/%s", key.NodePoolTagKey): "*",
					},
				},
			},
			{
				Sid:      "PassNodeIAMRole",
				Effect:   EffectAllow,
				Action:   StringOrSlice{"iam:PassRole"},
				Resource: StringOrSlice{key.NodeRoleARN(settings.Partition, derived.AccountID, settings.ClusterName)},
			},
			{
				Sid:      "EKSClusterEndpointLookup",
				Effect:   EffectAllow,
				Action:   StringOrSlice{"eks:DescribeCluster"},
				Resource: StringOrSlice{derived.ClusterARN},
			},
			{
				Sid:    "AllowScopedInstanceProfileActions",
				Effect: EffectAllow,
				Action: StringOrSlice{
					"iam:CreateInstanceProfile",
					"iam:TagInstanceProfile",
					"iam:AddRoleToInstanceProfile",
					"iam:RemoveRoleFromInstanceProfile",
					"iam:DeleteInstanceProfile",
					"iam:GetInstanceProfile",
				},
				Resource: StringOrSlice{"*"},
				Condition: Condition{
					"StringEquals": {
						fmt.Sprintf("aws:ResourceTag/%s", key.ClusterOwnedTagKey(settings.ClusterName)): "owned",
						fmt.Sprintf("aws:ResourceTag/%s", key.RegionTagKey):                             derived.Region,
					},
					"StringLike": {
						fmt.Sprintf("aws:ResourceTag/%s", key.NodeClassTagKey): "*",
					},
				},
			},
		},
	}
}
