package routeros

import (
	"sort"
	"strings"

	goros "github.com/go-routeros/routeros/v3"
	"github.com/go-routeros/routeros/v3/proto"

	"github.com/micro-ha/hotspot-monitor/internal/model"
)

func mapReply(reply *goros.Reply) *Reply {
	out := &Reply{Records: []model.Record{}, Sequence: true}
	if reply == nil {
		return out
	}
	for _, sentence := range reply.Re {
		out.Records = append(out.Records, mapSentence(sentence))
	}
	if reply.Done != nil {
		out.Ret = strings.TrimSpace(reply.Done.Map["ret"])
	}
	return out
}

func mapSentence(sentence *proto.Sentence) model.Record {
	mapped := make(model.Record)
	if sentence == nil {
		return mapped
	}
	for key, value := range sentence.Map {
		mapped[key] = value
	}
	for _, pair := range sentence.List {
		mapped[pair.Key] = pair.Value
	}
	return mapped
}

// mapParams encodes a flat parameter set as API words. Keys starting with
// "?" become query words, everything else an attribute word.
func mapParams(params map[string]string) []string {
	if len(params) == 0 {
		return nil
	}
	keys := sortedKeys(params)

	words := make([]string, 0, len(keys))
	for _, key := range keys {
		value := params[key]
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "?"):
			words = append(words, trimmed+"="+value)
		case strings.HasPrefix(trimmed, "="):
			name := strings.TrimPrefix(trimmed, "=")
			words = append(words, "="+name+"="+value)
		default:
			words = append(words, "="+trimmed+"="+value)
		}
	}
	return words
}

func sortedKeys(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
