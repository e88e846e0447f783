// Package chat implements the ChatIndex adapter: a SQL fan-out search over
// the workspace chat database (channels, direct messages, messages).
package chat

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"search-adapters/config"
	"search-adapters/rank"
)

// Result is one chat hit as returned on the wire. Pointer fields serialize as
// null when the kind does not carry them.
type Result struct {
	Kind           string  `json:"kind"`
	ID             string  `json:"id"`
	Score          int     `json:"score"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Snippet        *string `json:"snippet"`
	CreatedAt      *string `json:"createdAt"`
	ConversationID *string `json:"conversationId"`
	ThreadKind     string  `json:"threadKind"`
	ChannelSlug    *string `json:"channelSlug"`
	ChannelName    *string `json:"channelName"`
	OtherUserID    *string `json:"otherUserId"`
	OtherUserName  *string `json:"otherUserName"`
	MessageID      *string `json:"messageId"`
}

// Kind-relative score boosts, tuned with the office adapter's bands so
// channel hits edge out DMs which edge out individual messages at equal text
// score.
const (
	channelBoost = 50
	dmBoost      = 44
	messageBoost = 30
)

// OpenDatabase opens the chat SQLite database resolved from DATABASE_URL.
func OpenDatabase() (*sql.DB, error) {
	databasePath := config.ResolveDatabasePath()
	if _, err := os.Stat(databasePath); err != nil {
		return nil, fmt.Errorf("database file not found: %s", databasePath)
	}
	return sql.Open("sqlite", databasePath)
}

func userExists(db *sql.DB, userID string) (bool, error) {
	var id string
	err := db.QueryRow(`SELECT "id" FROM "User" WHERE "id" = ? LIMIT 1`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// searchChannels matches channel names and slugs with a LIKE prefilter, then
// scores in memory.
func searchChannels(db *sql.DB, query, needleLower string, limit int) ([]Result, error) {
	likeQuery := "%" + strings.ToLower(query) + "%"
	rows, err := db.Query(`
		SELECT
		  c."id" AS conversation_id,
		  c."createdAt" AS created_at,
		  ch."name" AS channel_name,
		  ch."slug" AS channel_slug
		FROM "Conversation" c
		JOIN "Channel" ch ON ch."id" = c."channelId"
		WHERE c."type" = 'CHANNEL'
		  AND (lower(ch."name") LIKE ? OR lower(ch."slug") LIKE ?)
		ORDER BY c."createdAt" DESC
		LIMIT ?`,
		likeQuery, likeQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var conversationID string
		var createdAt, channelName, channelSlug sql.NullString
		if err := rows.Scan(&conversationID, &createdAt, &channelName, &channelSlug); err != nil {
			return nil, err
		}

		name := channelName.String
		if name == "" {
			name = "channel"
		}
		slug := channelSlug.String

		score := rank.ScoreTextMatch(name, needleLower)
		if slugScore := rank.ScoreTextMatch(slug, needleLower); slugScore > score {
			score = slugScore
		}

		results = append(results, Result{
			Kind:           "channel",
			ID:             conversationID,
			Score:          score + channelBoost,
			Title:          "#" + name,
			Subtitle:       "Channel · " + slug,
			CreatedAt:      strPtr(createdAt),
			ConversationID: &conversationID,
			ThreadKind:     "channel",
			ChannelSlug:    &slug,
			ChannelName:    &name,
		})
	}
	return results, rows.Err()
}

// searchDMs scores the other participant of each of the user's direct
// conversations against the needle.
func searchDMs(db *sql.DB, userID, needleLower string, limit int) ([]Result, error) {
	rows, err := db.Query(`
		SELECT
		  c."id" AS conversation_id,
		  c."createdAt" AS created_at,
		  c."dmUserAId" AS dm_user_a_id,
		  c."dmUserBId" AS dm_user_b_id,
		  ua."id" AS user_a_id,
		  ua."displayName" AS user_a_name,
		  ub."id" AS user_b_id,
		  ub."displayName" AS user_b_name
		FROM "Conversation" c
		LEFT JOIN "User" ua ON ua."id" = c."dmUserAId"
		LEFT JOIN "User" ub ON ub."id" = c."dmUserBId"
		WHERE c."type" = 'DM'
		  AND (c."dmUserAId" = ? OR c."dmUserBId" = ?)
		LIMIT 500`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var conversationID string
		var createdAt, dmUserA, dmUserB, userAID, userAName, userBID, userBName sql.NullString
		if err := rows.Scan(&conversationID, &createdAt, &dmUserA, &dmUserB, &userAID, &userAName, &userBID, &userBName); err != nil {
			return nil, err
		}

		var otherUserID, otherUserName string
		switch userID {
		case dmUserA.String:
			otherUserID, otherUserName = userBID.String, userBName.String
		case dmUserB.String:
			otherUserID, otherUserName = userAID.String, userAName.String
		default:
			continue
		}
		if otherUserID == "" || otherUserName == "" {
			continue
		}

		score := rank.ScoreTextMatch(otherUserName, needleLower)
		if idScore := rank.ScoreTextMatch(otherUserID, needleLower); idScore > score {
			score = idScore
		}
		if score == 0 {
			continue
		}

		results = append(results, Result{
			Kind:           "dm",
			ID:             conversationID,
			Score:          score + dmBoost,
			Title:          otherUserName,
			Subtitle:       "Direct message",
			CreatedAt:      strPtr(createdAt),
			ConversationID: &conversationID,
			ThreadKind:     "dm",
			OtherUserID:    &otherUserID,
			OtherUserName:  &otherUserName,
		})

		if len(results) >= limit {
			break
		}
	}
	return results, rows.Err()
}

// searchMessages matches message bodies in channels plus the user's own DMs.
func searchMessages(db *sql.DB, userID, query, needleLower string, limit int) ([]Result, error) {
	likeQuery := "%" + strings.ToLower(query) + "%"
	rows, err := db.Query(`
		SELECT
		  m."id" AS message_id,
		  m."conversationId" AS conversation_id,
		  m."body" AS body,
		  m."createdAt" AS created_at,
		  sender."displayName" AS sender_name,
		  c."type" AS conversation_type,
		  ch."name" AS channel_name,
		  ch."slug" AS channel_slug,
		  c."dmUserAId" AS dm_user_a_id,
		  c."dmUserBId" AS dm_user_b_id,
		  ua."id" AS user_a_id,
		  ua."displayName" AS user_a_name,
		  ub."id" AS user_b_id,
		  ub."displayName" AS user_b_name
		FROM "Message" m
		JOIN "Conversation" c ON c."id" = m."conversationId"
		JOIN "User" sender ON sender."id" = m."senderId"
		LEFT JOIN "Channel" ch ON ch."id" = c."channelId"
		LEFT JOIN "User" ua ON ua."id" = c."dmUserAId"
		LEFT JOIN "User" ub ON ub."id" = c."dmUserBId"
		WHERE lower(m."body") LIKE ?
		  AND (
		    c."type" = 'CHANNEL'
		    OR (
		      c."type" = 'DM'
		      AND (c."dmUserAId" = ? OR c."dmUserBId" = ?)
		    )
		  )
		ORDER BY m."createdAt" DESC
		LIMIT ?`,
		likeQuery, userID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var messageID, conversationID string
		var body, createdAt, senderName, conversationType sql.NullString
		var channelName, channelSlug, dmUserA, dmUserB sql.NullString
		var userAID, userAName, userBID, userBName sql.NullString
		if err := rows.Scan(&messageID, &conversationID, &body, &createdAt, &senderName,
			&conversationType, &channelName, &channelSlug, &dmUserA, &dmUserB,
			&userAID, &userAName, &userBID, &userBName); err != nil {
			return nil, err
		}

		bodyScore := rank.ScoreTextMatch(body.String, needleLower)
		if bodyScore == 0 {
			continue
		}

		var snippet *string
		if s, ok := rank.ExtractSnippet(body.String, needleLower, rank.SnippetRadius); ok {
			snippet = &s
		}

		if conversationType.String == "CHANNEL" {
			name := channelName.String
			if name == "" {
				name = "channel"
			}
			slug := channelSlug.String
			results = append(results, Result{
				Kind:           "message",
				ID:             messageID,
				Score:          bodyScore + messageBoost,
				Title:          senderName.String + " in #" + name,
				Subtitle:       "Channel message",
				Snippet:        snippet,
				CreatedAt:      strPtr(createdAt),
				ConversationID: &conversationID,
				ThreadKind:     "channel",
				ChannelSlug:    &slug,
				ChannelName:    &name,
				MessageID:      &messageID,
			})
			continue
		}

		var otherUserID, otherUserName *string
		switch userID {
		case dmUserA.String:
			otherUserID, otherUserName = strPtr(userBID), strPtr(userBName)
		case dmUserB.String:
			otherUserID, otherUserName = strPtr(userAID), strPtr(userAName)
		}

		otherLabel := "DM"
		if otherUserName != nil && *otherUserName != "" {
			otherLabel = *otherUserName
		}

		results = append(results, Result{
			Kind:           "message",
			ID:             messageID,
			Score:          bodyScore + messageBoost,
			Title:          senderName.String + " in DM with " + otherLabel,
			Subtitle:       "Direct message",
			Snippet:        snippet,
			CreatedAt:      strPtr(createdAt),
			ConversationID: &conversationID,
			ThreadKind:     "dm",
			OtherUserID:    otherUserID,
			OtherUserName:  otherUserName,
			MessageID:      &messageID,
		})
	}
	return results, rows.Err()
}

// resultKey identifies a result for dedupe: one entry per channel, DM thread
// or message, keeping the best score.
func resultKey(r Result) string {
	switch r.Kind {
	case "channel":
		if r.ConversationID != nil {
			return "channel:" + *r.ConversationID
		}
		if r.ChannelSlug != nil {
			return "channel:" + *r.ChannelSlug
		}
		return "channel:" + r.ID
	case "dm":
		if r.OtherUserID != nil {
			return "dm:" + *r.OtherUserID
		}
		if r.ConversationID != nil {
			return "dm:" + *r.ConversationID
		}
		return "dm:" + r.ID
	default:
		if r.MessageID != nil {
			return "message:" + *r.MessageID
		}
		return "message:" + r.ID
	}
}

func dedupeResults(results []Result) []Result {
	bestByKey := make(map[string]Result, len(results))
	order := make([]string, 0, len(results))
	for _, result := range results {
		key := resultKey(result)
		existing, seen := bestByKey[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || result.Score > existing.Score {
			bestByKey[key] = result
		}
	}

	deduped := make([]Result, 0, len(order))
	for _, key := range order {
		deduped = append(deduped, bestByKey[key])
	}
	return deduped
}
