// Package reader loads wavefront object scenes into the in-memory scene model.
package reader

import (
	"github.com/orion-rt/orion/asset"
	"github.com/orion-rt/orion/scene"
)

// ReadScene parses the scene definition at scenePath. The path may point to a
// local file or to an http/https url; relative references inside the scene
// file (mtllib, call) are resolved against it.
func ReadScene(scenePath string) (*scene.Scene, error) {
	res, err := asset.NewResource(scenePath, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return ReadSceneResource(res)
}

// ReadSceneResource parses a scene definition from an open resource.
func ReadSceneResource(res *asset.Resource) (*scene.Scene, error) {
	return newWavefrontReader().Read(res)
}
