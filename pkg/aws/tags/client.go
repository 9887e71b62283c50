package tags

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/giantswarm/microerror"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type EC2API interface {
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
}

type Client interface {
	Apply(ctx context.Context, input ApplyTagsInput) error
}

func NewClient(ec2Client EC2API) (Client, error) {
	if ec2Client == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "ec2Client must not be empty")
	}

	return &client{
		ec2Client: ec2Client,
	}, nil
}

type client struct {
	ec2Client EC2API
}
