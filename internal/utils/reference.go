package utils

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReferenceNumber produces a human-facing unique identifier like
// TXN-48291736-9F3A1C: a millisecond timestamp fragment plus random hex.
func GenerateReferenceNumber(prefix string) string {
	timestamp := time.Now().UnixMilli() % 100000000
	id := uuid.New()
	unique := strings.ToUpper(hex.EncodeToString(id[:3]))
	return fmt.Sprintf("%s-%08d-%s", prefix, timestamp, unique)
}
