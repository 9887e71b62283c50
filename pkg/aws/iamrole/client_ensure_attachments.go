package iamrole

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type EnsureManagedPolicyAttachmentsInput struct {
	RoleName   string
	PolicyARNs []string
}

// EnsureManagedPolicyAttachments attaches every policy to the role in order.
// Attaching an already attached managed policy is a no-op on the IAM side.
func (c *client) EnsureManagedPolicyAttachments(ctx context.Context, input EnsureManagedPolicyAttachmentsInput) error {
	logger := log.FromContext(ctx)
	logger.Info("Started ensuring managed policy attachments", "role-name", input.RoleName)
	defer logger.Info("Finished ensuring managed policy attachments", "role-name", input.RoleName)

	if input.RoleName == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.RoleName must not be empty", input)
	}
	if len(input.PolicyARNs) == 0 {
		return microerror.Maskf(errors.InvalidConfigError, "%T.PolicyARNs must not be empty", input)
	}

	for _, policyARN := range input.PolicyARNs {
		iamInput := iam.AttachRolePolicyInput{
			RoleName:  aws.String(input.RoleName),
			PolicyArn: aws.String(policyARN),
		}

		_, err := c.iamClient.AttachRolePolicy(ctx, &iamInput)
		if errors.IsAlreadyExists(err) {
			logger.Info("Policy already attached", "role-name", input.RoleName, "policy-arn", policyARN)
			continue
		} else if err != nil {
			return microerror.Maskf(errors.ProvisioningFailedError, "attaching policy %q to role %q: %s", policyARN, input.RoleName, err)
		}

		logger.Info("Attached policy", "role-name", input.RoleName, "policy-arn", policyARN)
	}

	return nil
}
