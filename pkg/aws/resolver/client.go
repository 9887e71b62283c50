package resolver

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/giantswarm/microerror"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type EKSAPI interface {
	DescribeCluster(ctx context.Context, params *eks.DescribeClusterInput, optFns ...func(*eks.Options)) (*eks.DescribeClusterOutput, error)
}

type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type Client interface {
	Resolve(ctx context.Context, input ResolveInput) (DerivedValues, error)
}

func NewClient(stsClient STSAPI, eksClient EKSAPI, ssmClient SSMAPI) (Client, error) {
	if stsClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "stsClient must not be empty")
	}
	if eksClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "eksClient must not be empty")
	}
	if ssmClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "ssmClient must not be empty")
	}

	return &client{
		stsClient: stsClient,
		eksClient: eksClient,
		ssmClient: ssmClient,
	}, nil
}

type client struct {
	stsClient STSAPI
	eksClient EKSAPI
	ssmClient SSMAPI
}
