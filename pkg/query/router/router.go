package router

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"iot-console-be/pkg/client/docquery"
	"iot-console-be/pkg/client/unified"
	"iot-console-be/pkg/query/conversation"
)

// DocumentClient answers a question scoped to one indexed document.
type DocumentClient interface {
	Query(ctx context.Context, documentRef, query string) (*docquery.Result, error)
}

// UnifiedClient answers a free question and classifies it itself.
type UnifiedClient interface {
	Query(ctx context.Context, query string) (*unified.Result, error)
}

// Target is the resolved destination of one question: which entity the user
// had selected when they asked, and whether that entity is backed by an
// indexed document. All marks the all-customers selection.
type Target struct {
	EntityId    string
	DisplayName string
	DocumentRef string
	All         bool
}

// Router sends each question to the backend its target calls for and turns
// both the question and the outcome into conversation turns. A target with
// a document reference goes to the document backend; everything else,
// including the all-customers selection, goes to the unified backend which
// classifies the question itself.
type Router struct {
	documents DocumentClient
	unified   UnifiedClient
	log       *conversation.Log
	seq       atomic.Uint64
}

func NewRouter(documents DocumentClient, unified UnifiedClient, log *conversation.Log) *Router {
	return &Router{
		documents: documents,
		unified:   unified,
		log:       log,
	}
}

// Log exposes the conversation this router appends to.
func (r *Router) Log() *conversation.Log {
	return r.log
}

// Dispatch records the question as a user turn, queries the target's
// backend, and records the outcome as an assistant turn linked to the user
// turn by id. Dispatches may overlap; each assistant turn is appended when
// its backend resolves, in resolution order, and the reply link is what
// ties it back to its question. Backend failures produce a failure turn
// naming the entity instead of an error.
func (r *Router) Dispatch(ctx context.Context, target Target, text string) conversation.Turn {
	seq := r.seq.Add(1)
	question := r.log.Append(conversation.Turn{
		Seq:  seq,
		Role: conversation.RoleUser,
		Text: text,
	})

	answer := r.query(ctx, target, text)
	answer.Seq = seq
	answer.Role = conversation.RoleAssistant
	answer.InReplyTo = question.Id
	return r.log.Append(answer)
}

func (r *Router) query(ctx context.Context, target Target, text string) conversation.Turn {
	if !target.All && target.DocumentRef != "" {
		return r.queryDocument(ctx, target, text)
	}
	return r.queryUnified(ctx, target, text)
}

func (r *Router) queryDocument(ctx context.Context, target Target, text string) conversation.Turn {
	result, err := r.documents.Query(ctx, target.DocumentRef, text)
	if err != nil {
		return failureTurn(target)
	}

	answer := result.AnswerText
	if answer == "" {
		answer = emptyAnswerText(target)
	}
	return conversation.Turn{
		Text:           answer,
		Classification: conversation.ClassDocument,
		Attachments: &conversation.Attachments{
			Images:       result.Images,
			Tables:       result.Tables,
			SourceChunks: result.SourceChunks,
			ElapsedTime:  result.ElapsedTime,
		},
	}
}

func (r *Router) queryUnified(ctx context.Context, target Target, text string) conversation.Turn {
	result, err := r.unified.Query(ctx, text)
	if err != nil {
		return failureTurn(target)
	}

	answer := result.AnswerText
	if answer == "" {
		answer = emptyAnswerText(target)
	}
	return conversation.Turn{
		Text:           answer,
		Classification: normalizeClassification(result.QueryType),
		Attachments: &conversation.Attachments{
			Rows:      result.Rows,
			RowCount:  result.RowCount,
			QueryText: result.QueryText,
		},
	}
}

// normalizeClassification maps the unified backend's classification strings
// onto the conversation taxonomy. Unrecognized strings degrade to UNKNOWN
// rather than leaking vendor vocabulary into the log.
func normalizeClassification(queryType string) conversation.Classification {
	switch strings.ToUpper(strings.TrimSpace(queryType)) {
	case "DATABASE":
		return conversation.ClassDatabase
	case "PDF", "DOCUMENT":
		return conversation.ClassDocument
	case "MIXED":
		return conversation.ClassMixed
	case "LLM_ANSWER":
		return conversation.ClassLLMAnswer
	default:
		return conversation.ClassUnknown
	}
}

func failureTurn(target Target) conversation.Turn {
	return conversation.Turn{
		Text:           fmt.Sprintf("Sorry, I could not get an answer for %s right now. Please try again.", targetName(target)),
		Classification: conversation.ClassUnknown,
	}
}

func emptyAnswerText(target Target) string {
	return fmt.Sprintf("I did not find anything for %s on that question.", targetName(target))
}

func targetName(target Target) string {
	if target.All {
		return "all customers"
	}
	if target.DisplayName != "" {
		return target.DisplayName
	}
	if target.EntityId != "" {
		return target.EntityId
	}
	return "the fleet"
}
