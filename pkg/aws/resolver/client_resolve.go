package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

const (
	amiParameterFormatAMD64 = "/aws/service/eks/optimized-ami/%s/amazon-linux-2/recommended/image_id"
	amiParameterFormatARM64 = "/aws/service/eks/optimized-ami/%s/amazon-linux-2-arm64/recommended/image_id"
	amiParameterFormatGPU   = "/aws/service/eks/optimized-ami/%s/amazon-linux-2-gpu/recommended/image_id"
)

// Resolve computes DerivedValues with read-only queries. Any query failure
// is fatal to the run since everything downstream depends on correct
// identity, region and AMI data, so there are no retries here.
func (c *client) Resolve(ctx context.Context, input ResolveInput) (output DerivedValues, err error) {
	logger := log.FromContext(ctx)
	logger.Info("Started resolving derived values")
	defer func() {
		if err == nil {
			logger.Info("Finished resolving derived values")
		} else {
			logger.Error(err, "Failed to resolve derived values")
		}
	}()

	if input.ClusterName == "" {
		return DerivedValues{}, microerror.Maskf(errors.InvalidConfigError, "%T.ClusterName must not be empty", input)
	}
	if input.Region == "" {
		return DerivedValues{}, microerror.Maskf(errors.InvalidConfigError, "%T.Region must not be empty", input)
	}
	if input.KubernetesVersion == "" {
		return DerivedValues{}, microerror.Maskf(errors.InvalidConfigError, "%T.KubernetesVersion must not be empty", input)
	}

	output = DerivedValues{
		Region:      input.Region,
		AMIIDByArch: map[string]string{},
	}

	//
	// Resolve the account ID from the caller identity.
	//
	{
		stsOutput, err := c.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return DerivedValues{}, microerror.Maskf(errors.ResolutionFailedError, "getting caller identity: %s", err)
		}
		output.AccountID = *stsOutput.Account
	}

	//
	// Resolve cluster ARN, endpoint, OIDC issuer and the cluster security
	// group from the EKS control plane.
	//
	{
		eksInput := eks.DescribeClusterInput{
			Name: aws.String(input.ClusterName),
		}
		eksOutput, err := c.eksClient.DescribeCluster(ctx, &eksInput)
		if err != nil {
			return DerivedValues{}, microerror.Maskf(errors.ResolutionFailedError, "describing cluster %q: %s", input.ClusterName, err)
		}

		cluster := eksOutput.Cluster
		output.ClusterARN = aws.ToString(cluster.Arn)
		output.ClusterEndpoint = aws.ToString(cluster.Endpoint)

		if cluster.ResourcesVpcConfig != nil {
			output.ClusterSecurityGroupID = aws.ToString(cluster.ResourcesVpcConfig.ClusterSecurityGroupId)
		}

		if cluster.Identity == nil || cluster.Identity.Oidc == nil || aws.ToString(cluster.Identity.Oidc.Issuer) == "" {
			return DerivedValues{}, microerror.Maskf(errors.ResolutionFailedError, "cluster %q has no OIDC issuer", input.ClusterName)
		}

		// IAM condition keys use the bare issuer host+path, without the
		// scheme.
		issuer := aws.ToString(cluster.Identity.Oidc.Issuer)
		output.OIDCIssuerHost = strings.TrimPrefix(issuer, "https://")
	}

	//
	// Resolve the recommended EKS-optimized AMI for every architecture from
	// the public SSM parameters.
	//
	{
		parameterFormats := []struct {
			arch   string
			format string
		}{
			{arch: "amd64", format: amiParameterFormatAMD64},
			{arch: "arm64", format: amiParameterFormatARM64},
			{arch: "gpu", format: amiParameterFormatGPU},
		}

		for _, parameter := range parameterFormats {
			arch := parameter.arch
			name := fmt.Sprintf(parameter.format, input.KubernetesVersion)

			ssmInput := ssm.GetParameterInput{
				Name: aws.String(name),
			}
			ssmOutput, err := c.ssmClient.GetParameter(ctx, &ssmInput)
			if err != nil {
				return DerivedValues{}, microerror.Maskf(errors.ResolutionFailedError, "getting AMI parameter %q: %s", name, err)
			}

			output.AMIIDByArch[arch] = aws.ToString(ssmOutput.Parameter.Value)
		}
	}

	logger.Info("Resolved derived values",
		"account-id", output.AccountID,
		"region", output.Region,
		"oidc-issuer-host", output.OIDCIssuerHost,
		"cluster-arn", output.ClusterARN)

	return output, nil
}
