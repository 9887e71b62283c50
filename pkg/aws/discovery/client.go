package discovery

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/giantswarm/microerror"

	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/tags"
	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type EKSAPI interface {
	ListNodegroups(ctx context.Context, params *eks.ListNodegroupsInput, optFns ...func(*eks.Options)) (*eks.ListNodegroupsOutput, error)
	DescribeNodegroup(ctx context.Context, params *eks.DescribeNodegroupInput, optFns ...func(*eks.Options)) (*eks.DescribeNodegroupOutput, error)
}

type EC2API interface {
	DescribeLaunchTemplateVersions(ctx context.Context, params *ec2.DescribeLaunchTemplateVersionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeLaunchTemplateVersionsOutput, error)
}

type Client interface {
	Run(ctx context.Context, input RunInput) (RunOutput, error)
}

func NewClient(eksClient EKSAPI, ec2Client EC2API, tagsClient tags.Client) (Client, error) {
	if eksClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "eksClient must not be empty")
	}
	if ec2Client == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "ec2Client must not be empty")
	}
	if tagsClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "tagsClient must not be empty")
	}

	return &client{
		eksClient:  eksClient,
		ec2Client:  ec2Client,
		tagsClient: tagsClient,
	}, nil
}

type client struct {
	eksClient  EKSAPI
	ec2Client  EC2API
	tagsClient tags.Client
}
