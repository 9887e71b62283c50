package iamrole

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type EnsureInlinePolicyInput struct {
	RoleName   string
	PolicyName string

	// PolicyDocument is the rendered permission policy. PutRolePolicy is an
	// upsert, so rerunning with a changed document updates the live policy
	// in place. This is the only operation here that is not purely additive.
	PolicyDocument string
}

func (c *client) EnsureInlinePolicy(ctx context.Context, input EnsureInlinePolicyInput) error {
	logger := log.FromContext(ctx)
	logger.Info("Started ensuring inline policy", "role-name", input.RoleName, "policy-name", input.PolicyName)
	defer logger.Info("Finished ensuring inline policy", "role-name", input.RoleName, "policy-name", input.PolicyName)

	if input.RoleName == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.RoleName must not be empty", input)
	}
	if input.PolicyName == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.PolicyName must not be empty", input)
	}
	if input.PolicyDocument == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.PolicyDocument must not be empty", input)
	}

	iamInput := iam.PutRolePolicyInput{
		RoleName:       aws.String(input.RoleName),
		PolicyName:     aws.String(input.PolicyName),
		PolicyDocument: aws.String(input.PolicyDocument),
	}

	_, err := c.iamClient.PutRolePolicy(ctx, &iamInput)
	if err != nil {
		return microerror.Maskf(errors.ProvisioningFailedError, "putting inline policy %q on role %q: %s", input.PolicyName, input.RoleName, err)
	}

	return nil
}
