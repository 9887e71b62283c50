package bootstrap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/giantswarm/microerror"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	nodeTrustPolicyFileName            = "node-trust-policy.json"
	controllerTrustPolicyFileName      = "controller-trust-policy.json"
	controllerPermissionPolicyFileName = "controller-permission-policy.json"
)

// emitDocuments makes the rendered policy documents observable: they are
// always logged, and additionally written to outputDir when one is
// configured.
func emitDocuments(ctx context.Context, outputDir string, documents renderedDocuments) error {
	logger := log.FromContext(ctx)

	logger.Info("Rendered policy documents",
		"node-trust-policy", string(documents.NodeTrustPolicy),
		"controller-trust-policy", string(documents.ControllerTrustPolicy),
		"controller-permission-policy", string(documents.ControllerPermissionPolicy))

	if outputDir == "" {
		return nil
	}

	err := os.MkdirAll(outputDir, 0o755)
	if err != nil {
		return microerror.Mask(err)
	}

	files := map[string][]byte{
		nodeTrustPolicyFileName:            documents.NodeTrustPolicy,
		controllerTrustPolicyFileName:      documents.ControllerTrustPolicy,
		controllerPermissionPolicyFileName: documents.ControllerPermissionPolicy,
	}

	for name, content := range files {
		path := filepath.Join(outputDir, name)
		err = os.WriteFile(path, content, 0o644)
		if err != nil {
			return microerror.Mask(err)
		}
		logger.Info("Wrote policy document", "path", path)
	}

	return nil
}
