package bootstrap_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/discovery"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/iamrole"
	"github.com/giantswarm/karpenter-bootstrap/pkg/aws/resolver"
	"github.com/giantswarm/karpenter-bootstrap/pkg/bootstrap"
	"github.com/giantswarm/karpenter-bootstrap/pkg/config"
	"github.com/giantswarm/karpenter-bootstrap/pkg/errors"
)

type fakeResolver struct {
	derived resolver.DerivedValues
	err     error
	calls   int
}

func (f *fakeResolver) Resolve(_ context.Context, _ resolver.ResolveInput) (resolver.DerivedValues, error) {
	f.calls++
	if f.err != nil {
		return resolver.DerivedValues{}, f.err
	}
	return f.derived, nil
}

type fakeIAMRoleClient struct {
	roles          map[string]string
	attachments    map[string][]string
	inlinePolicies map[string]string
	callOrder      *[]string

	ensureRoleErr error
}

func newFakeIAMRoleClient(callOrder *[]string) *fakeIAMRoleClient {
	return &fakeIAMRoleClient{
		roles:          map[string]string{},
		attachments:    map[string][]string{},
		inlinePolicies: map[string]string{},
		callOrder:      callOrder,
	}
}

func (f *fakeIAMRoleClient) EnsureRole(_ context.Context, input iamrole.EnsureRoleInput) error {
	*f.callOrder = append(*f.callOrder, "EnsureRole/"+input.RoleName)
	if f.ensureRoleErr != nil {
		return f.ensureRoleErr
	}
	if _, exists := f.roles[input.RoleName]; !exists {
		f.roles[input.RoleName] = input.TrustPolicyDocument
	}
	return nil
}

func (f *fakeIAMRoleClient) EnsureManagedPolicyAttachments(_ context.Context, input iamrole.EnsureManagedPolicyAttachmentsInput) error {
	*f.callOrder = append(*f.callOrder, "EnsureManagedPolicyAttachments/"+input.RoleName)
	f.attachments[input.RoleName] = input.PolicyARNs
	return nil
}

func (f *fakeIAMRoleClient) EnsureInlinePolicy(_ context.Context, input iamrole.EnsureInlinePolicyInput) error {
	*f.callOrder = append(*f.callOrder, "EnsureInlinePolicy/"+input.PolicyName)
	f.inlinePolicies[input.PolicyName] = input.PolicyDocument
	return nil
}

type fakeDiscoveryClient struct {
	callOrder *[]string
	inputs    []discovery.RunInput
	output    discovery.RunOutput
	err       error
}

func (f *fakeDiscoveryClient) Run(_ context.Context, input discovery.RunInput) (discovery.RunOutput, error) {
	*f.callOrder = append(*f.callOrder, "Discovery/Run")
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return discovery.RunOutput{}, f.err
	}
	return f.output, nil
}

var _ = Describe("Bootstrapper", func() {
	var (
		ctx context.Context

		settings        config.Settings
		resolverClient  *fakeResolver
		iamRoleClient   *fakeIAMRoleClient
		discoveryClient *fakeDiscoveryClient
		callOrder       []string

		bootstrapper bootstrap.Bootstrapper
	)

	BeforeEach(func() {
		ctx = context.Background()
		callOrder = []string{}

		settings = config.Settings{
			ClusterName:       "demo",
			Namespace:         "karpenter",
			ServiceAccount:    "karpenter",
			Partition:         "aws",
			KubernetesVersion: "1.29",
			Region:            "us-west-2",
		}

		resolverClient = &fakeResolver{
			derived: resolver.DerivedValues{
				Region:                 "us-west-2",
				AccountID:              "123456789012",
				ClusterARN:             "arn:aws:eks:us-west-2:123456789012:cluster/demo",
				ClusterSecurityGroupID: "sg-cluster",
				OIDCIssuerHost:         "oidc.eks.us-west-2.amazonaws.com/id/EXAMPLE",
				AMIIDByArch: map[string]string{
					"amd64": "ami-amd64",
					"arm64": "ami-arm64",
					"gpu":   "ami-gpu",
				},
			},
		}
		iamRoleClient = newFakeIAMRoleClient(&callOrder)
		discoveryClient = &fakeDiscoveryClient{
			callOrder: &callOrder,
			output: discovery.RunOutput{
				SubnetIDs:        []string{"subnet-1"},
				SecurityGroupIDs: []string{"sg-cluster"},
			},
		}

		var err error
		bootstrapper, err = bootstrap.New(bootstrap.Config{
			Settings:        settings,
			Resolver:        resolverClient,
			IAMRoleClient:   iamRoleClient,
			DiscoveryClient: discoveryClient,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs every step strictly in sequence", func() {
		Expect(bootstrapper.Run(ctx)).To(Succeed())

		Expect(callOrder).To(Equal([]string{
			"EnsureRole/KarpenterNodeRole-demo",
			"EnsureManagedPolicyAttachments/KarpenterNodeRole-demo",
			"EnsureRole/KarpenterControllerRole-demo",
			"EnsureInlinePolicy/KarpenterControllerPolicy-demo",
			"Discovery/Run",
		}))
		Expect(resolverClient.calls).To(Equal(1))
	})

	It("attaches the fixed set of managed node policies", func() {
		Expect(bootstrapper.Run(ctx)).To(Succeed())

		Expect(iamRoleClient.attachments["KarpenterNodeRole-demo"]).To(Equal([]string{
			"arn:aws:iam::aws:policy/AmazonEKSWorkerNodePolicy",
			"arn:aws:iam::aws:policy/AmazonEKS_CNI_Policy",
			"arn:aws:iam::aws:policy/AmazonEC2ContainerRegistryReadOnly",
			"arn:aws:iam::aws:policy/AmazonSSMManagedInstanceCore",
		}))
	})

	It("passes the controller permission policy and derived security group along", func() {
		Expect(bootstrapper.Run(ctx)).To(Succeed())

		Expect(iamRoleClient.inlinePolicies["KarpenterControllerPolicy-demo"]).To(
			ContainSubstring("ConditionalEC2Termination"))

		Expect(discoveryClient.inputs).To(HaveLen(1))
		Expect(discoveryClient.inputs[0].ClusterName).To(Equal("demo"))
		Expect(discoveryClient.inputs[0].ClusterSecurityGroupID).To(Equal("sg-cluster"))
	})

	It("does not create new roles on rerun", func() {
		Expect(bootstrapper.Run(ctx)).To(Succeed())
		Expect(bootstrapper.Run(ctx)).To(Succeed())

		Expect(iamRoleClient.roles).To(HaveLen(2))
	})

	When("an output directory is configured", func() {
		var outputDir string

		BeforeEach(func() {
			outputDir = GinkgoT().TempDir()

			settings.OutputDir = outputDir

			var err error
			bootstrapper, err = bootstrap.New(bootstrap.Config{
				Settings:        settings,
				Resolver:        resolverClient,
				IAMRoleClient:   iamRoleClient,
				DiscoveryClient: discoveryClient,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("writes the three rendered policy documents", func() {
			Expect(bootstrapper.Run(ctx)).To(Succeed())

			nodeTrust, err := os.ReadFile(filepath.Join(outputDir, "node-trust-policy.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(nodeTrust)).To(ContainSubstring("ec2.amazonaws.com"))

			controllerTrust, err := os.ReadFile(filepath.Join(outputDir, "controller-trust-policy.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(controllerTrust)).To(ContainSubstring("system:serviceaccount:karpenter:karpenter"))

			permission, err := os.ReadFile(filepath.Join(outputDir, "controller-permission-policy.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(permission)).To(ContainSubstring("AllowScopedInstanceProfileActions"))
		})
	})

	When("resolution fails", func() {
		BeforeEach(func() {
			resolverClient.err = fmt.Errorf("AccessDenied: not authorized")
		})

		It("aborts before any IAM write", func() {
			Expect(bootstrapper.Run(ctx)).NotTo(Succeed())
			Expect(callOrder).To(BeEmpty())
		})
	})

	When("provisioning the node role fails", func() {
		BeforeEach(func() {
			iamRoleClient.ensureRoleErr = fmt.Errorf("AccessDenied: not authorized to perform iam:CreateRole")
		})

		It("aborts the remaining steps without rollback", func() {
			Expect(bootstrapper.Run(ctx)).NotTo(Succeed())
			Expect(callOrder).To(Equal([]string{"EnsureRole/KarpenterNodeRole-demo"}))
		})
	})

	When("discovery tagging fails", func() {
		BeforeEach(func() {
			discoveryClient.err = fmt.Errorf("RequestLimitExceeded: throttled")
		})

		It("surfaces the failure", func() {
			Expect(bootstrapper.Run(ctx)).NotTo(Succeed())
		})
	})

	Describe("New", func() {
		It("rejects incomplete settings", func() {
			_, err := bootstrap.New(bootstrap.Config{
				Resolver:        resolverClient,
				IAMRoleClient:   iamRoleClient,
				DiscoveryClient: discoveryClient,
			})
			Expect(errors.IsInvalidConfig(err)).To(BeTrue())
		})

		It("rejects missing clients", func() {
			_, err := bootstrap.New(bootstrap.Config{
				Settings: settings,
			})
			Expect(errors.IsInvalidConfig(err)).To(BeTrue())
		})
	})
})
