package replay

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"
)

// HTTPSink uploads the replay as a multipart POST — record.rs's
// HttpEndpointReplaySaving. No third-party HTTP client is wired here:
// net/http is itself the ecosystem-idiomatic choice for a one-shot upload,
// not a stdlib fallback (see DESIGN.md).
type HTTPSink struct {
	URL    string
	Client *http.Client
}

func NewHTTPSink(url string) *HTTPSink {
	return &HTTPSink{URL: url, Client: &http.Client{}}
}

func (s *HTTPSink) Save(meta Metadata, data []byte) {
	go func() {
		timeStr := meta.StartTime.Format("20060102T150405")
		fileName := fmt.Sprintf("%s.%s.hrp", meta.ServerName, timeStr)

		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		_ = w.WriteField("time", timeStr)
		_ = w.WriteField("server", meta.ServerName)
		part, err := w.CreateFormFile("replay", fileName)
		if err != nil {
			log.Warn().Err(err).Msg("replay multipart create failed")
			return
		}
		if _, err := part.Write(data); err != nil {
			log.Warn().Err(err).Msg("replay multipart write failed")
			return
		}
		if err := w.Close(); err != nil {
			log.Warn().Err(err).Msg("replay multipart close failed")
			return
		}

		req, err := http.NewRequest(http.MethodPost, s.URL, &body)
		if err != nil {
			log.Warn().Err(err).Msg("replay request build failed")
			return
		}
		req.Header.Set("Content-Type", w.FormDataContentType())

		resp, err := s.Client.Do(req)
		if err != nil {
			log.Warn().Err(err).Msg("replay upload failed")
			return
		}
		defer resp.Body.Close()
	}()
}
