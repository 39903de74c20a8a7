package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	contractx "github.com/taskwire/taskwire/agent/contract"
)

// Result is one classified message: the reply to show the user plus the
// tool calls that carry it out. Zero tool calls with a reply is a valid
// outcome (clarifications and unrecognized input).
type Result struct {
	Reply     string
	ToolCalls []contractx.ToolCall
}

const fallbackReply = "I understand you're trying to interact with your tasks. " +
	"You can ask me to add, list, complete, delete, or update tasks."

var (
	addKeywords      = regexp.MustCompile(`\b(?:add|create|new|remember)\b`)
	listKeywords     = regexp.MustCompile(`\b(?:show|list|see|what|my|all)\b`)
	completeKeywords = regexp.MustCompile(`\b(?:complete|done|finish|mark)\b`)
	deleteKeywords   = regexp.MustCompile(`\b(?:delete|remove|cancel)\b`)
	updateKeywords   = regexp.MustCompile(`\b(?:update|change|modify|edit)\b`)

	addPrefix    = regexp.MustCompile(`(?i)^(?:add|create|new|remember|make|set)\b`)
	taskIDRe     = regexp.MustCompile(`\b(\d+)\b`)
	updateClause = regexp.MustCompile(`(?i)\b(?:to|as|with)\s+([^.!?]+)`)
)

type candidate struct {
	priority int
	pos      int
	build    func(message, lower string) (Result, bool)
}

// Extract classifies a message into at most one intent. Keyword intents
// compete by position: the intent whose keyword appears earliest in the
// message wins, with ties broken by the fixed add, list, complete,
// delete, update order. Position matters because a message like
// "update 3 to finish essay" mentions a later intent's keyword too.
func Extract(message string) Result {
	lower := strings.ToLower(strings.TrimSpace(message))

	builders := []func(message, lower string) (Result, bool){
		buildAdd, buildList, buildComplete, buildDelete, buildUpdate,
	}
	keywords := []*regexp.Regexp{
		addKeywords, listKeywords, completeKeywords, deleteKeywords, updateKeywords,
	}

	var candidates []candidate
	for i, re := range keywords {
		loc := re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		candidates = append(candidates, candidate{priority: i, pos: loc[0], build: builders[i]})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].pos != candidates[j].pos {
			return candidates[i].pos < candidates[j].pos
		}
		return candidates[i].priority < candidates[j].priority
	})

	for _, c := range candidates {
		if result, ok := c.build(message, lower); ok {
			return result
		}
	}
	return Result{Reply: fallbackReply}
}

// buildAdd strips the leading command word and takes the remainder as the
// title, preserving the user's casing. An empty title declines the intent
// so the message can match something else.
func buildAdd(message, _ string) (Result, bool) {
	title := strings.TrimSpace(addPrefix.ReplaceAllString(strings.TrimSpace(message), ""))
	if title == "" {
		return Result{}, false
	}
	return Result{
		Reply: fmt.Sprintf("Task '%s' has been created for you.", title),
		ToolCalls: []contractx.ToolCall{{
			Tool:   "add_task",
			Params: map[string]any{"title": title},
		}},
	}, true
}

func buildList(_, lower string) (Result, bool) {
	status := "all"
	switch {
	case strings.Contains(lower, "pending") || strings.Contains(lower, "incomplete"):
		status = "pending"
	case strings.Contains(lower, "completed") || strings.Contains(lower, "done"):
		status = "completed"
	}
	return Result{
		Reply: fmt.Sprintf("Here are your %s tasks.", status),
		ToolCalls: []contractx.ToolCall{{
			Tool:   "list_tasks",
			Params: map[string]any{"status": status},
		}},
	}, true
}

func buildComplete(message, _ string) (Result, bool) {
	taskID, ok := firstTaskID(message)
	if !ok {
		return Result{Reply: "Please specify which task to complete by ID (e.g., 'complete task 3')."}, true
	}
	return Result{
		Reply: fmt.Sprintf("Task %d has been marked as completed.", taskID),
		ToolCalls: []contractx.ToolCall{{
			Tool:   "complete_task",
			Params: map[string]any{"task_id": taskID},
		}},
	}, true
}

func buildDelete(message, _ string) (Result, bool) {
	taskID, ok := firstTaskID(message)
	if !ok {
		return Result{Reply: "Please specify which task to delete by ID (e.g., 'delete task 3')."}, true
	}
	return Result{
		Reply: fmt.Sprintf("Task %d has been deleted.", taskID),
		ToolCalls: []contractx.ToolCall{{
			Tool:   "delete_task",
			Params: map[string]any{"task_id": taskID},
		}},
	}, true
}

func buildUpdate(message, _ string) (Result, bool) {
	taskID, hasID := firstTaskID(message)
	clause := updateClause.FindStringSubmatch(message)
	if !hasID || clause == nil {
		return Result{Reply: "Please specify which task to update and the new title (e.g., 'update task 1 to Buy groceries')."}, true
	}
	title := strings.TrimSpace(clause[1])
	return Result{
		Reply: fmt.Sprintf("Task %d has been updated to '%s'.", taskID, title),
		ToolCalls: []contractx.ToolCall{{
			Tool:   "update_task",
			Params: map[string]any{"task_id": taskID, "title": title},
		}},
	}, true
}

func firstTaskID(message string) (int64, bool) {
	match := taskIDRe.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
