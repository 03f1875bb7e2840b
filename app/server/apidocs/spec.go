package apidocs

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var adminSpec []byte

// AdminSpec 读取并校验管理接口的 OpenAPI 文档，返回 JSON
func AdminSpec() ([]byte, error) {
	swg, err := openapi3.NewLoader().LoadFromData(adminSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin spec: %w", err)
	}
	if err := swg.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid admin spec: %w", err)
	}
	return swg.MarshalJSON()
}
