package anchor

import (
	"encoding/base64"
	"encoding/json"

	"github.com/Mcnoble1/Medisphere-sub002/pkg/types"
)

// Field aliases accepted when extracting the anchored claim from a
// decoded payload. Tried in order; first match wins.
var (
	hashAliases      = []string{"recordHash", "record_hash", "hash"}
	contentIDAliases = []string{"ipfsCid", "ipfs_cid", "cid"}
)

// DecodeMessage recovers the structured payload from a mirror node log
// entry. The message field is base64; the decoded bytes are interpreted
// as UTF-8 text and parsed as JSON. Non-JSON text is returned verbatim
// rather than rejected, since the topic may carry free-form messages.
// Returns nil only when the entry is absent or has no message field.
func DecodeMessage(entry *types.LogEntry) interface{} {
	if entry == nil || entry.Message == "" {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(entry.Message)
	if err != nil {
		// Not valid base64; treat the field itself as the payload text.
		return entry.Message
	}

	text := string(raw)

	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return text
	}

	return parsed
}

// ExtractAnchorClaim pulls the claimed hash and content id out of a
// decoded payload using the alias tables. The second return is false
// when the payload is not a JSON object or either field is missing.
func ExtractAnchorClaim(payload interface{}) (claimedHash, contentID string, ok bool) {
	obj, isObject := payload.(map[string]interface{})
	if !isObject {
		return "", "", false
	}

	claimedHash, hashFound := lookupFirst(obj, hashAliases)
	contentID, cidFound := lookupFirst(obj, contentIDAliases)

	return claimedHash, contentID, hashFound && cidFound
}

// lookupFirst returns the value of the first alias present in the
// object with a string value
func lookupFirst(obj map[string]interface{}, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, present := obj[alias]; present {
			if s, isString := v.(string); isString && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
