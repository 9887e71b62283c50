package discovery

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/tags"
	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
	"github.com/giantswarm/karpenter-bootstrap/pkg/key"
)

// Run recomputes the discoverable resource set from current cloud state and
// applies the discovery tag in one idempotent pass. There is no persistent
// state, so rerunning converges on the same tag set instead of doubling it.
func (c *client) Run(ctx context.Context, input RunInput) (output RunOutput, err error) {
	logger := log.FromContext(ctx)
	logger.Info("Started tagging discoverable resources", "cluster-name", input.ClusterName)
	defer func() {
		if err == nil {
			logger.Info("Finished tagging discoverable resources", "cluster-name", input.ClusterName)
		} else {
			logger.Error(err, "Failed to tag discoverable resources", "cluster-name", input.ClusterName)
		}
	}()

	if input.ClusterName == "" {
		return RunOutput{}, microerror.Maskf(errors.InvalidConfigError, "%T.ClusterName must not be empty", input)
	}

	discoveryTags := map[string]string{
		key.DiscoveryTagKey: input.ClusterName,
	}

	nodeGroupNames, err := c.listNodeGroupNames(ctx, input.ClusterName)
	if err != nil {
		return RunOutput{}, microerror.Mask(err)
	}

	//
	// Collect the union of all node group subnets and tag them. A node group
	// with zero subnets contributes nothing and must not fail the pass.
	//
	subnetIDSet := map[string]struct{}{}
	var firstNodeGroup *eks.DescribeNodegroupOutput
	for _, nodeGroupName := range nodeGroupNames {
		eksInput := eks.DescribeNodegroupInput{
			ClusterName:   aws.String(input.ClusterName),
			NodegroupName: aws.String(nodeGroupName),
		}
		eksOutput, err := c.eksClient.DescribeNodegroup(ctx, &eksInput)
		if err != nil {
			return RunOutput{}, microerror.Maskf(errors.TaggingFailedError, "describing node group %q: %s", nodeGroupName, err)
		}

		if firstNodeGroup == nil {
			firstNodeGroup = eksOutput
		}

		for _, subnetID := range eksOutput.Nodegroup.Subnets {
			subnetIDSet[subnetID] = struct{}{}
		}
	}

	output.SubnetIDs = sortedSet(subnetIDSet)
	if len(output.SubnetIDs) > 0 {
		applyInput := tags.ApplyTagsInput{
			ResourceIds: output.SubnetIDs,
			Tags:        discoveryTags,
		}
		err = c.tagsClient.Apply(ctx, applyInput)
		if err != nil {
			return RunOutput{}, microerror.Mask(err)
		}
	} else {
		logger.Info("No node group subnets found, skipping subnet tagging", "cluster-name", input.ClusterName)
	}

	//
	// Tag the cluster security group plus whatever security groups the first
	// node group's launch template references. A group without an
	// inspectable launch template degrades to the cluster security group
	// only.
	//
	securityGroupIDSet := map[string]struct{}{}
	if input.ClusterSecurityGroupID != "" {
		securityGroupIDSet[input.ClusterSecurityGroupID] = struct{}{}
	}

	if firstNodeGroup != nil {
		templateSecurityGroupIDs := c.launchTemplateSecurityGroups(ctx, firstNodeGroup)
		for _, securityGroupID := range templateSecurityGroupIDs {
			securityGroupIDSet[securityGroupID] = struct{}{}
		}
	}

	output.SecurityGroupIDs = sortedSet(securityGroupIDSet)
	if len(output.SecurityGroupIDs) > 0 {
		applyInput := tags.ApplyTagsInput{
			ResourceIds: output.SecurityGroupIDs,
			Tags:        discoveryTags,
		}
		err = c.tagsClient.Apply(ctx, applyInput)
		if err != nil {
			return RunOutput{}, microerror.Mask(err)
		}
	} else {
		logger.Info("No security groups found, skipping security group tagging", "cluster-name", input.ClusterName)
	}

	return output, nil
}

func (c *client) listNodeGroupNames(ctx context.Context, clusterName string) ([]string, error) {
	var names []string

	var nextToken *string
	for {
		eksInput := eks.ListNodegroupsInput{
			ClusterName: aws.String(clusterName),
			NextToken:   nextToken,
		}
		eksOutput, err := c.eksClient.ListNodegroups(ctx, &eksInput)
		if err != nil {
			return nil, microerror.Maskf(errors.TaggingFailedError, "listing node groups of cluster %q: %s", clusterName, err)
		}

		names = append(names, eksOutput.Nodegroups...)

		nextToken = eksOutput.NextToken
		if nextToken == nil {
			break
		}
	}

	return names, nil
}

func sortedSet(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)

	return result
}
