package iamrole

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/giantswarm/microerror"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type IAMAPI interface {
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
	PutRolePolicy(ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error)
}

type Client interface {
	EnsureRole(ctx context.Context, input EnsureRoleInput) error
	EnsureManagedPolicyAttachments(ctx context.Context, input EnsureManagedPolicyAttachmentsInput) error
	EnsureInlinePolicy(ctx context.Context, input EnsureInlinePolicyInput) error
}

func NewClient(iamClient IAMAPI) (Client, error) {
	if iamClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "iamClient must not be empty")
	}

	return &client{
		iamClient: iamClient,
	}, nil
}

type client struct {
	iamClient IAMAPI
}
