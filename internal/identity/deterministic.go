package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by entity type so different entities never share a key.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DescriptionUUID identifies the single description an owner has for kind.
func DescriptionUUID(kind, ownerID string) uuid.UUID {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return uuid.Nil
	}
	return UUID("zenao:description:" + strings.ToLower(strings.TrimSpace(kind)) + ":" + ownerID)
}
