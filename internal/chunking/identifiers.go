package chunking

import (
	"fmt"

	"github.com/google/uuid"
)

// pointNamespace is used to derive deterministic point ids for chunks that
// don't already carry a UUID-shaped chunk id, mirroring the adapter's
// uuid.uuid5(uuid.NAMESPACE_DNS, chunk_id) derivation.
var pointNamespace = uuid.NameSpaceDNS

// ChunkID builds the human-readable chunk identifier used as the
// relational store's natural key: doc_{documentId}_page_{pageNumber}_{role}.
// role already carries the strategy-specific content type, e.g. "meta",
// "step_3", "node_n5", "safety_warnings". index is optional and only needed
// to disambiguate two chunks that would otherwise share a role on the same
// page (e.g. a second critical_rule on page 4).
func ChunkID(documentID int64, pageNumber int, role string, index ...int) string {
	base := fmt.Sprintf("doc_%d_page_%d_%s", documentID, pageNumber, role)
	if len(index) > 0 {
		return fmt.Sprintf("%s_%d", base, index[0])
	}
	return base
}

// PointID derives the Qdrant point id for a chunk id. If chunkID already
// parses as a UUID it's used as-is; otherwise a UUIDv5 is derived so point
// ids are stable across re-indexing runs of the same chunk.
func PointID(chunkID string) string {
	if parsed, err := uuid.Parse(chunkID); err == nil {
		return parsed.String()
	}
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

func estimateTokens(text string) int {
	return len(text) / 4
}
