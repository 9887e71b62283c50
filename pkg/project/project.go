package project

var (
	description = "Bootstraps the AWS IAM roles and discovery tags that Karpenter needs in an existing EKS cluster."
	gitSHA      = "n/a"
	name        = "karpenter-bootstrap"
	source      = "https://github.com/giantswarm/karpenter-bootstrap"
	version     = "0.1.0"
)

func Description() string {
	return description
}

func GitSHA() string {
	return gitSHA
}

func Name() string {
	return name
}

func Source() string {
	return source
}

func Version() string {
	return version
}
