//go:build nogl

package app

import (
	"context"
	"os"

	C "diesel.com/cloth/cloth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//RunViewer returns an error explaining that OpenGL support is disabled
func RunViewer(ctx context.Context, scene *Scene, col C.Colliders, view ViewConfig, log logrus.FieldLogger) error {
	return errors.Errorf("%s was built without OpenGL support, use the term command", os.Args[0])
}
