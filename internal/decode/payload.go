package decode

import (
	"time"

	"neighborlift/internal/model"

	"github.com/google/uuid"
)

// Tolerant decoding of realtime change-feed frames and push payloads into
// typed records. Upstream producers disagree on field names, date encodings
// and scalar wrapping, so every logical field is resolved through an ordered
// synonym table: the first synonym present wins. Decoders return (nil, false)
// only when a required field is missing or malformed; bad optional fields are
// treated as absent. No decoder ever panics on malformed input.

// epochMillisThreshold separates epoch-seconds from epoch-milliseconds
// values. Anything above it is read as milliseconds.
const epochMillisThreshold = 1e12

// dataKey wraps the real fields in webhook/push envelopes.
const dataKey = "data"

// eventTypeKeys is a compatibility contract with the upstream event source:
// top-level synonyms are tried in this order, then the same synonyms one
// level under "data". Do not reorder.
var eventTypeKeys = []string{"type", "eventType", "event_type"}

// Scalar wrapper keys seen in boxed payload values, e.g. {"stringValue": "x"}.
var boxKeys = []string{
	"value",
	"stringValue",
	"integerValue",
	"doubleValue",
	"booleanValue",
	"timestampValue",
}

// unbox strips one level of scalar wrapping. Non-boxed values pass through.
func unbox(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	for _, k := range boxKeys {
		if inner, ok := m[k]; ok {
			return inner
		}
	}
	return v
}

// lookup resolves a logical field through its synonym table: all synonyms at
// the top level first, then all synonyms one level under the data wrapper.
func lookup(raw map[string]interface{}, keys []string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return unbox(v), true
		}
	}
	if nested, ok := raw[dataKey].(map[string]interface{}); ok {
		for _, k := range keys {
			if v, ok := nested[k]; ok {
				return unbox(v), true
			}
		}
	}
	return nil, false
}

func stringField(raw map[string]interface{}, keys ...string) (string, bool) {
	v, ok := lookup(raw, keys)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolField(raw map[string]interface{}, keys ...string) (bool, bool) {
	v, ok := lookup(raw, keys)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func intField(raw map[string]interface{}, keys ...string) (int, bool) {
	v, ok := lookup(raw, keys)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// uuidField validates that the resolved value is a well-formed identifier.
// Malformed identifiers read as absent; the caller decides whether that
// fails the decode.
func uuidField(raw map[string]interface{}, keys ...string) (uuid.UUID, bool) {
	s, ok := stringField(raw, keys...)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// timeField accepts ISO-8601 with or without fractional seconds, and numeric
// epoch values in seconds or milliseconds.
func timeField(raw map[string]interface{}, keys ...string) (time.Time, bool) {
	v, ok := lookup(raw, keys)
	if !ok {
		return time.Time{}, false
	}
	return parseTimestamp(v)
}

func parseTimestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		// RFC3339Nano parses both fractional and whole-second forms.
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	case float64:
		return epochToTime(t), true
	case int64:
		return epochToTime(float64(t)), true
	case int:
		return epochToTime(float64(t)), true
	default:
		return time.Time{}, false
	}
}

func epochToTime(n float64) time.Time {
	if n > epochMillisThreshold {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec := int64(n)
	nsec := int64((n - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// idListField normalizes a collection of identifiers. Absent key, empty list
// and list of boxed scalars all come out as the same ordered set; malformed
// or duplicate entries are skipped.
func idListField(raw map[string]interface{}, keys ...string) []uuid.UUID {
	v, ok := lookup(raw, keys)
	if !ok {
		return []uuid.UUID{}
	}
	list, ok := v.([]interface{})
	if !ok {
		return []uuid.UUID{}
	}
	ids := make([]uuid.UUID, 0, len(list))
	seen := make(map[uuid.UUID]struct{}, len(list))
	for _, entry := range list {
		s, ok := unbox(entry).(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// IDList is the exported form of idListField for callers that need a raw
// identifier collection off a payload.
func IDList(raw map[string]interface{}, keys ...string) []uuid.UUID {
	return idListField(raw, keys...)
}

func requestTypeField(raw map[string]interface{}, keys ...string) (model.RequestType, bool) {
	s, ok := stringField(raw, keys...)
	if !ok {
		return "", false
	}
	t := model.RequestType(s)
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// FeedEvent decodes the envelope of one feed frame. The payload handed to
// the per-kind decoders is the data wrapper when present, otherwise the
// whole frame.
func FeedEvent(raw map[string]interface{}) (*model.FeedEvent, bool) {
	eventType, ok := stringField(raw, eventTypeKeys...)
	if !ok || eventType == "" {
		return nil, false
	}
	payload := raw
	if nested, ok := raw[dataKey].(map[string]interface{}); ok {
		payload = nested
	}
	return &model.FeedEvent{EventType: eventType, Payload: payload}, true
}

func Notification(raw map[string]interface{}) (*model.Notification, bool) {
	id, ok := uuidField(raw, "id", "notification_id", "notificationId")
	if !ok {
		return nil, false
	}
	userID, ok := uuidField(raw, "user_id", "userId", "recipient_id")
	if !ok {
		return nil, false
	}
	kind, ok := stringField(raw, "kind", "notification_type", "notificationType")
	if !ok {
		return nil, false
	}
	createdAt, ok := timeField(raw, "created_at", "createdAt", "timestamp")
	if !ok {
		return nil, false
	}

	n := &model.Notification{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: createdAt,
	}
	if t, ok := requestTypeField(raw, "request_type", "requestType"); ok {
		n.RequestType = t
	}
	if reqID, ok := uuidField(raw, "request_id", "requestId"); ok {
		n.RequestID = &reqID
	}
	n.Title, _ = stringField(raw, "title")
	n.Body, _ = stringField(raw, "body", "message")
	n.Read, _ = boolField(raw, "read", "is_read", "isRead")
	return n, true
}

func Ride(raw map[string]interface{}) (*model.Ride, bool) {
	id, ok := uuidField(raw, "id", "ride_id", "rideId")
	if !ok {
		return nil, false
	}
	creatorID, ok := uuidField(raw, "creator_id", "creatorId", "user_id")
	if !ok {
		return nil, false
	}
	departAt, ok := timeField(raw, "depart_at", "departAt", "date")
	if !ok {
		return nil, false
	}

	r := &model.Ride{
		ID:        id,
		CreatorID: creatorID,
		DepartAt:  departAt,
	}
	r.Title, _ = stringField(raw, "title")
	r.Origin, _ = stringField(raw, "origin", "from", "pickup")
	r.Destination, _ = stringField(raw, "destination", "to", "dropoff")
	r.Seats, _ = intField(raw, "seats", "seat_count", "seatCount")
	r.Status, _ = stringField(raw, "status")
	if fulfillerID, ok := uuidField(raw, "fulfiller_id", "fulfillerId", "driver_id"); ok {
		r.FulfillerID = &fulfillerID
	}
	if createdAt, ok := timeField(raw, "created_at", "createdAt"); ok {
		r.CreatedAt = createdAt
	}
	return r, true
}

func Favor(raw map[string]interface{}) (*model.Favor, bool) {
	id, ok := uuidField(raw, "id", "favor_id", "favorId")
	if !ok {
		return nil, false
	}
	creatorID, ok := uuidField(raw, "creator_id", "creatorId", "user_id")
	if !ok {
		return nil, false
	}
	title, ok := stringField(raw, "title")
	if !ok {
		return nil, false
	}

	f := &model.Favor{
		ID:        id,
		CreatorID: creatorID,
		Title:     title,
	}
	f.Description, _ = stringField(raw, "description", "details")
	f.Status, _ = stringField(raw, "status")
	if dueAt, ok := timeField(raw, "due_at", "dueAt", "due_date"); ok {
		f.DueAt = &dueAt
	}
	if fulfillerID, ok := uuidField(raw, "fulfiller_id", "fulfillerId", "helper_id"); ok {
		f.FulfillerID = &fulfillerID
	}
	if createdAt, ok := timeField(raw, "created_at", "createdAt"); ok {
		f.CreatedAt = createdAt
	}
	return f, true
}

func ChatMessage(raw map[string]interface{}) (*model.ChatMessage, bool) {
	id, ok := uuidField(raw, "id", "message_id", "messageId")
	if !ok {
		return nil, false
	}
	threadID, ok := uuidField(raw, "thread_id", "threadId", "chat_id")
	if !ok {
		return nil, false
	}
	senderID, ok := uuidField(raw, "sender_id", "senderId", "author_id")
	if !ok {
		return nil, false
	}
	sentAt, ok := timeField(raw, "sent_at", "sentAt", "timestamp", "created_at")
	if !ok {
		return nil, false
	}

	m := &model.ChatMessage{
		ID:       id,
		ThreadID: threadID,
		SenderID: senderID,
		SentAt:   sentAt,
	}
	m.Text, _ = stringField(raw, "text", "body", "message")
	m.ReaderIDs = idListField(raw, "reader_ids", "readerIds", "read_by", "readBy")
	return m, true
}

func TownHallPost(raw map[string]interface{}) (*model.TownHallPost, bool) {
	id, ok := uuidField(raw, "id", "post_id", "postId")
	if !ok {
		return nil, false
	}
	authorID, ok := uuidField(raw, "author_id", "authorId", "user_id")
	if !ok {
		return nil, false
	}
	createdAt, ok := timeField(raw, "created_at", "createdAt", "timestamp")
	if !ok {
		return nil, false
	}

	p := &model.TownHallPost{
		ID:        id,
		AuthorID:  authorID,
		CreatedAt: createdAt,
	}
	p.Title, _ = stringField(raw, "title")
	p.Body, _ = stringField(raw, "body", "content")
	p.CommentCount, _ = intField(raw, "comment_count", "commentCount")
	return p, true
}
