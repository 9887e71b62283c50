package iamrole

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type EnsureRoleInput struct {
	RoleName    string
	Description string

	// TrustPolicyDocument is the rendered assume role policy document. When
	// the role already exists the document is NOT reconciled; first apply
	// wins and reruns are safe.
	TrustPolicyDocument string
}

func (c *client) EnsureRole(ctx context.Context, input EnsureRoleInput) error {
	logger := log.FromContext(ctx)
	logger.Info("Started ensuring role", "role-name", input.RoleName)
	defer logger.Info("Finished ensuring role", "role-name", input.RoleName)

	if input.RoleName == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.RoleName must not be empty", input)
	}
	if input.TrustPolicyDocument == "" {
		return microerror.Maskf(errors.InvalidConfigError, "%T.TrustPolicyDocument must not be empty", input)
	}

	iamInput := iam.CreateRoleInput{
		RoleName:                 aws.String(input.RoleName),
		AssumeRolePolicyDocument: aws.String(input.TrustPolicyDocument),
	}
	if input.Description != "" {
		iamInput.Description = aws.String(input.Description)
	}

	_, err := c.iamClient.CreateRole(ctx, &iamInput)
	if errors.IsAlreadyExists(err) {
		logger.Info("Role already exists, skipping creation", "role-name", input.RoleName)
		return nil
	} else if err != nil {
		return microerror.Maskf(errors.ProvisioningFailedError, "creating role %q: %s", input.RoleName, err)
	}

	logger.Info("Created role", "role-name", input.RoleName)

	return nil
}
