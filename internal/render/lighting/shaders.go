package lighting

import (
	_ "embed"
	"fmt"

	"go.uber.org/zap"

	"chosenoffset.com/raylight/internal/logging"
	"chosenoffset.com/raylight/internal/render"
)

var (
	//go:embed shaders/light.kage
	lightShaderSrc []byte
	//go:embed shaders/shadow.kage
	shadowShaderSrc []byte
	//go:embed shaders/blur.kage
	blurShaderSrc []byte
	//go:embed shaders/composite.kage
	compositeShaderSrc []byte
)

type shaderSet struct {
	light, shadow, blur, composite render.Shader
}

func compileShaders(r render.Renderer) (*shaderSet, error) {
	set := &shaderSet{}
	sources := []struct {
		name string
		src  []byte
		dst  *render.Shader
	}{
		{"light", lightShaderSrc, &set.light},
		{"shadow", shadowShaderSrc, &set.shadow},
		{"blur", blurShaderSrc, &set.blur},
		{"composite", compositeShaderSrc, &set.composite},
	}
	for _, s := range sources {
		sh, err := r.CompileShader(s.src)
		if err != nil {
			logging.Log.Error("Failed to compile shader", zap.String("shader", s.name), zap.Error(err))
			set.dispose()
			return nil, fmt.Errorf("compiling %s shader: %w", s.name, err)
		}
		*s.dst = sh
	}
	return set, nil
}

func (s *shaderSet) dispose() {
	for _, sh := range []render.Shader{s.light, s.shadow, s.blur, s.composite} {
		if sh != nil {
			sh.Dispose()
		}
	}
}
