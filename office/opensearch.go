package office

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"search-adapters/config"
	"search-adapters/rank"
)

// openSearchSimulateRequest is the _simulate payload of the ingest-attachment
// pipeline: one document carrying the base64 file bytes.
type openSearchSimulateRequest struct {
	Docs []openSearchSimulateDoc `json:"docs"`
}

type openSearchSimulateDoc struct {
	Source openSearchSimulateSource `json:"_source"`
}

type openSearchSimulateSource struct {
	Data         string `json:"data"`
	ResourceName string `json:"resource_name"`
}

func openSearchErrorMeta(reason string) map[string]string {
	return map[string]string{"extractor": "opensearch-error", "reason": reason}
}

// extractWithOpenSearch runs the external extractor for one file. It returns
// empty text plus a meta describing why whenever the pipeline is disabled,
// unreachable, or produced no content. Every outcome is recoverable; the
// caller falls through to the local extractors.
func extractWithOpenSearch(path string) (string, map[string]string) {
	baseURL := config.OpenSearchBaseURL()
	if baseURL == "" {
		return "", map[string]string{"extractor": "opensearch-disabled"}
	}

	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return "", openSearchErrorMeta("read-failed")
	}
	if len(rawBytes) > config.MaxBinaryFileBytes {
		return "", map[string]string{"extractor": "opensearch-skipped", "reason": "file-too-large"}
	}

	pipeline := config.OpenSearchPipeline()
	endpoint := baseURL + "/_ingest/pipeline/" + pipeline + "/_simulate"
	payload := openSearchSimulateRequest{
		Docs: []openSearchSimulateDoc{{
			Source: openSearchSimulateSource{
				Data:         base64.StdEncoding.EncodeToString(rawBytes),
				ResourceName: filepath.Base(path),
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", openSearchErrorMeta("request-failed")
	}

	request, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", openSearchErrorMeta("request-failed")
	}
	request.Header.Set("Content-Type", "application/json")
	if auth := config.OpenSearchAuthHeader(); auth != "" {
		request.Header.Set("Authorization", auth)
	}

	client := &http.Client{Timeout: time.Duration(config.ExtractTimeoutSeconds()) * time.Second}
	response, err := client.Do(request)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("opensearch extract request failed")
		return "", openSearchErrorMeta("request-failed")
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return "", openSearchErrorMeta("request-failed")
	}

	var decoded map[string]any
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", openSearchErrorMeta("invalid-json")
	}

	docs, ok := decoded["docs"].([]any)
	if !ok || len(docs) == 0 {
		return "", openSearchErrorMeta("missing-docs")
	}

	first, ok := docs[0].(map[string]any)
	if !ok {
		return "", openSearchErrorMeta("invalid-doc")
	}

	doc, _ := first["doc"].(map[string]any)
	source, _ := doc["_source"].(map[string]any)
	attachment, ok := source["attachment"].(map[string]any)
	if !ok {
		return "", openSearchErrorMeta("missing-attachment")
	}

	content, ok := attachment["content"].(string)
	if !ok {
		return "", map[string]string{"extractor": "opensearch-empty"}
	}

	content = rank.TruncateChars(content, config.MaxExtractedTextChars)
	return content, map[string]string{"extractor": "opensearch", "pipeline": pipeline}
}
