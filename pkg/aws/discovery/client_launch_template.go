package discovery

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// launchTemplateSecurityGroups resolves the security groups referenced by
// the node group's launch template, either directly or on its first network
// interface. Node groups backed by a launch configuration have no template,
// and a failed template lookup must not abort the run, so all failure paths
// return an empty set.
func (c *client) launchTemplateSecurityGroups(ctx context.Context, nodeGroup *eks.DescribeNodegroupOutput) []string {
	logger := log.FromContext(ctx)

	launchTemplate := nodeGroup.Nodegroup.LaunchTemplate
	if launchTemplate == nil || aws.ToString(launchTemplate.Id) == "" {
		logger.Info("Node group has no launch template, using cluster security group only",
			"node-group", aws.ToString(nodeGroup.Nodegroup.NodegroupName))
		return nil
	}

	ec2Input := ec2.DescribeLaunchTemplateVersionsInput{
		LaunchTemplateId: launchTemplate.Id,
	}
	if aws.ToString(launchTemplate.Version) != "" {
		ec2Input.Versions = []string{aws.ToString(launchTemplate.Version)}
	}

	ec2Output, err := c.ec2Client.DescribeLaunchTemplateVersions(ctx, &ec2Input)
	if err != nil {
		logger.Info("Failed to describe launch template versions, using cluster security group only",
			"launch-template-id", aws.ToString(launchTemplate.Id),
			"reason", err.Error())
		return nil
	}
	if len(ec2Output.LaunchTemplateVersions) == 0 {
		return nil
	}

	templateData := ec2Output.LaunchTemplateVersions[0].LaunchTemplateData
	if templateData == nil {
		return nil
	}

	if len(templateData.NetworkInterfaces) > 0 && len(templateData.NetworkInterfaces[0].Groups) > 0 {
		return templateData.NetworkInterfaces[0].Groups
	}

	return templateData.SecurityGroupIds
}
