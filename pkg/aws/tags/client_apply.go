package tags

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type ApplyTagsInput struct {
	ResourceIds []string
	Tags        map[string]string
}

// Apply sets the given tags on all resources in one call. Re-applying an
// already present tag is a no-op on the EC2 side, so Apply is safe to run
// repeatedly.
func (c *client) Apply(ctx context.Context, input ApplyTagsInput) error {
	logger := log.FromContext(ctx)
	logger.Info("Started applying tags", "resource-ids", input.ResourceIds)
	defer logger.Info("Finished applying tags", "resource-ids", input.ResourceIds)

	if len(input.ResourceIds) == 0 {
		return microerror.Maskf(errors.InvalidConfigError, "%T.ResourceIds must not be empty", input)
	}
	if len(input.Tags) == 0 {
		return microerror.Maskf(errors.InvalidConfigError, "%T.Tags must not be empty", input)
	}

	// For testing, we need sorted keys
	sortedKeys := make([]string, 0, len(input.Tags))
	for k := range input.Tags {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Strings(sortedKeys)

	tags := make([]ec2Types.Tag, 0, len(input.Tags))
	for _, k := range sortedKeys {
		tags = append(tags, ec2Types.Tag{
			Key:   aws.String(k),
			Value: aws.String(input.Tags[k]),
		})
	}

	ec2Input := ec2.CreateTagsInput{
		Resources: input.ResourceIds,
		Tags:      tags,
	}

	_, err := c.ec2Client.CreateTags(ctx, &ec2Input)
	if err != nil {
		return microerror.Maskf(errors.TaggingFailedError, "creating tags on %v: %s", input.ResourceIds, err)
	}

	return nil
}
