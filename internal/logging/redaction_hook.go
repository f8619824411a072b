package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/r3e-network/discovery-pipeline/pkg/redaction"
)

// redactionHook scrubs credential-shaped field values before logrus formats
// an entry, catching secrets that land in free-form fields (banners, error
// strings) rather than flowing through pkg/credentials' Secret type.
type redactionHook struct {
	redactor *redaction.Redactor
}

func newRedactionHook() *redactionHook {
	return &redactionHook{redactor: redaction.New(redaction.DefaultConfig())}
}

func (h *redactionHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *redactionHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.redactor.String(entry.Message)
	if len(entry.Data) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		fields[k] = v
	}
	entry.Data = h.redactor.Map(fields)
	return nil
}
