package api

import (
	"encoding/json"
	"time"

	"skillsync/models"
)

// The backend's JSON is not shape-stable: older endpoints emit "userName"
// where newer ones emit "username", and a few emit "authorId" instead of
// "userId". Everything is normalized into the canonical models types here,
// at the boundary, so nothing downstream has to care.

func pickString(m map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

func pickTime(m map[string]json.RawMessage, keys ...string) time.Time {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var t time.Time
		if err := json.Unmarshal(raw, &t); err == nil {
			return t
		}
	}
	return time.Time{}
}

func pickBool(m map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b
		}
	}
	return false
}

func normalizeComment(raw json.RawMessage) (models.Comment, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.Comment{}, err
	}
	return models.Comment{
		ID:         pickString(m, "id", "_id"),
		ProgressID: pickString(m, "progressId", "postId", "progress_id"),
		UserID:     pickString(m, "userId", "user_id", "authorId"),
		Username:   pickString(m, "username", "userName"),
		Content:    pickString(m, "content", "text"),
		Edited:     pickBool(m, "edited"),
		CreatedAt:  pickTime(m, "createdAt", "created_at"),
		UpdatedAt:  pickTime(m, "updatedAt", "updated_at"),
	}, nil
}

func normalizeReply(raw json.RawMessage) (models.Reply, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.Reply{}, err
	}
	return models.Reply{
		ID:        pickString(m, "id", "_id"),
		CommentID: pickString(m, "commentId", "comment_id", "parentId"),
		UserID:    pickString(m, "userId", "user_id", "authorId"),
		Username:  pickString(m, "username", "userName"),
		Content:   pickString(m, "content", "text"),
		CreatedAt: pickTime(m, "createdAt", "created_at"),
		UpdatedAt: pickTime(m, "updatedAt", "updated_at"),
	}, nil
}

func normalizeCommentList(raw json.RawMessage) ([]models.Comment, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]models.Comment, 0, len(items))
	for _, it := range items {
		c, err := normalizeComment(it)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func normalizeReplyList(raw json.RawMessage) ([]models.Reply, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]models.Reply, 0, len(items))
	for _, it := range items {
		r, err := normalizeReply(it)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// normalizeFollowList accepts both list shapes the backend has shipped:
// {count, users: [...]} and {count, following: [...]}.
func normalizeFollowList(raw json.RawMessage) (models.FollowList, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.FollowList{}, err
	}
	var list models.FollowList
	if cnt, ok := m["count"]; ok {
		if err := json.Unmarshal(cnt, &list.Count); err != nil {
			return models.FollowList{}, err
		}
	}
	usersRaw, ok := m["users"]
	if !ok {
		usersRaw, ok = m["following"]
	}
	if !ok {
		usersRaw, ok = m["followers"]
	}
	if ok {
		var items []json.RawMessage
		if err := json.Unmarshal(usersRaw, &items); err != nil {
			return models.FollowList{}, err
		}
		for _, it := range items {
			var um map[string]json.RawMessage
			if err := json.Unmarshal(it, &um); err != nil {
				return models.FollowList{}, err
			}
			list.Users = append(list.Users, models.UserRef{
				ID:        pickString(um, "id", "_id", "userId"),
				Username:  pickString(um, "username", "userName"),
				FirstName: pickString(um, "firstName", "first_name"),
				LastName:  pickString(um, "lastName", "last_name"),
			})
		}
	}
	if list.Count == 0 {
		list.Count = len(list.Users)
	}
	return list, nil
}
