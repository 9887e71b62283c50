package assumerole

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/giantswarm/microerror"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type Client interface {
	CredentialsProvider(roleARN string) aws.CredentialsProvider
}

func NewClient(stsCredsAssumeRoleAPIClient stscreds.AssumeRoleAPIClient) (Client, error) {
	if stsCredsAssumeRoleAPIClient == nil {
		return nil, microerror.Maskf(errors.InvalidConfigError, "stsCredsAssumeRoleAPIClient must not be empty")
	}

	return &client{
		stsCredsAssumeRoleAPIClient: stsCredsAssumeRoleAPIClient,
	}, nil
}

type client struct {
	stsCredsAssumeRoleAPIClient stscreds.AssumeRoleAPIClient
}

// CredentialsProvider returns a cached credentials provider that assumes the
// given role for every AWS call the bootstrap makes.
func (c *client) CredentialsProvider(roleARN string) aws.CredentialsProvider {
	assumeRoleProvider := stscreds.NewAssumeRoleProvider(c.stsCredsAssumeRoleAPIClient, roleARN)
	return aws.NewCredentialsCache(assumeRoleProvider)
}
