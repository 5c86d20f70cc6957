// Пакет generated — модели и chi-сервер, сгенерированные из контракта
// internal/api/openapi/openapi.yaml.
package generated

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.4.1 -config oapi-codegen.yaml ../openapi/openapi.yaml
