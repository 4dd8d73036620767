package replay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// FileSink writes the replay to disk under directory, named per spec §6.5:
// "{server_name}.{ISO8601 local time}.hrp" — record.rs's FileReplaySaving.
type FileSink struct {
	Directory string
}

func NewFileSink(directory string) *FileSink {
	return &FileSink{Directory: directory}
}

func (s *FileSink) Save(meta Metadata, data []byte) {
	go func() {
		if err := os.MkdirAll(s.Directory, 0o755); err != nil {
			log.Warn().Err(err).Msg("replay directory create failed")
			return
		}
		name := fmt.Sprintf("%s.%s.hrp", meta.ServerName, meta.StartTime.Format("20060102T150405"))
		path := filepath.Join(s.Directory, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("replay write failed")
		}
	}()
}
