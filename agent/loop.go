package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/codeloop/code"
	"github.com/hupe1980/codeloop/i18n"
	"github.com/hupe1980/codeloop/metrics"
	"github.com/hupe1980/codeloop/model"
	"github.com/hupe1980/codeloop/reply"
)

// bell is written to Options.Bell when an instruction completes.
var bell = []byte("\a\a\a")

// Run processes instruction until the model stops replying with runnable
// code.
//
// The loop:
//  1. Sends the instruction, attaching the system prompt only while the model
//     history is empty
//  2. Classifies each reply; text ends the loop
//  3. Executes the code of a runnable reply and sends the JSON result back as
//     the next user turn
//  4. Stops early after Config.MaxRounds feedback rounds when it is positive
//
// When the system prompt is attached, instruction becomes the active
// instruction of the session. Model and executor errors are returned
// unchanged; the completion message and bell are only emitted on success.
func (a *Agent) Run(ctx context.Context, instruction string, opts RunOptions) error {
	a.sink.Status("▶ " + a.cat.T(i18n.StartInstruction) + ": " + instruction)
	done := a.log.StartTimer("instruction")

	system := a.pendingSystemPrompt()
	if system != "" {
		a.state.Activate(instruction)
	}

	resp, err := a.send(ctx, instruction, model.SendOptions{SystemPrompt: system, Provider: opts.Provider})
	if err != nil {
		a.metrics.RecordInstruction(metrics.OutcomeError)
		return err
	}

	if err := a.process(ctx, resp); err != nil {
		a.metrics.RecordInstruction(metrics.OutcomeError)
		return err
	}

	done()
	a.finish()
	return nil
}

// Chat sends a single prompt and renders the reply as markdown without
// looking for code.
func (a *Agent) Chat(ctx context.Context, prompt string) error {
	resp, err := a.send(ctx, prompt, model.SendOptions{SystemPrompt: a.pendingSystemPrompt()})
	if err != nil {
		return err
	}
	a.sink.Markdown(resp)
	return nil
}

// Step resumes from the last assistant message in the model history. If it
// holds runnable code the feedback cycle runs and the loop continues as in
// Run; a text message ends the step silently. Without a previous message the
// operator is told there is no context.
func (a *Agent) Step(ctx context.Context) error {
	last, ok := a.llm.LastMessage()
	if !ok || last == "" {
		a.sink.Warn("❌ " + a.cat.T(i18n.NoContext))
		return nil
	}

	src, isCode := reply.IsCode(reply.Classify(last))
	if !isCode {
		return nil
	}

	resp, err := a.feedback(ctx, src, 1)
	if err != nil {
		return err
	}
	if err := a.processFrom(ctx, resp, 1); err != nil {
		return err
	}
	a.finish()
	return nil
}

// pendingSystemPrompt returns the system prompt if the conversation has not
// started yet.
func (a *Agent) pendingSystemPrompt() string {
	if len(a.llm.History()) > 0 {
		return ""
	}
	return a.state.SystemPrompt
}

func (a *Agent) process(ctx context.Context, resp string) error {
	return a.processFrom(ctx, resp, 0)
}

// processFrom loops over replies; rounds is the number of feedback rounds
// already performed for the current instruction.
func (a *Agent) processFrom(ctx context.Context, resp string, rounds int) error {
	for resp != "" {
		a.sink.Status("📥 " + a.cat.T(i18n.LLMResponse) + ":")
		a.sink.Markdown(resp)

		src, ok := reply.IsCode(reply.Classify(resp))
		if !ok {
			break
		}

		if limit := a.state.MaxRounds; limit > 0 && rounds >= limit {
			a.sink.Warn(a.cat.T(i18n.RoundLimit, limit))
			a.log.Warn("Feedback round limit reached", "max_rounds", limit)
			a.metrics.RecordInstruction(metrics.OutcomeLimit)
			return nil
		}

		rounds++
		next, err := a.feedback(ctx, src, rounds)
		if err != nil {
			return err
		}
		resp = next
	}
	a.metrics.RecordInstruction(metrics.OutcomeOK)
	return nil
}

// feedback executes src, reports the result and sends it back to the model
// without a system prompt. The model's reply, possibly empty, is returned.
func (a *Agent) feedback(ctx context.Context, src string, round int) (string, error) {
	a.sink.Status("⚡ " + a.cat.T(i18n.StartExecute) + ":")
	a.sink.Markdown("```python\n" + src + "\n```")

	start := time.Now()
	result, err := a.exec.Execute(ctx, src)
	dur := time.Since(start)
	a.log.LogExecution(round, dur, err)
	if err != nil {
		a.metrics.RecordExecution(metrics.OutcomeError, dur)
		return "", fmt.Errorf("execute code: %w", err)
	}
	a.metrics.RecordExecution(executionOutcome(result), dur)

	payload, err := encodeResult(result)
	if err != nil {
		return "", err
	}
	a.sink.Status("✅ " + a.cat.T(i18n.ExecuteResult) + ":")
	a.sink.Markdown("```json\n" + payload + "\n```")

	a.sink.Status("📤 " + a.cat.T(i18n.StartFeedback))
	a.metrics.RecordRound()
	return a.send(ctx, payload, model.SendOptions{})
}

func (a *Agent) send(ctx context.Context, text string, opts model.SendOptions) (string, error) {
	start := time.Now()
	resp, err := a.llm.Send(ctx, text, opts)
	provider := opts.Provider
	if provider == "" {
		provider = "default"
	}
	a.log.LogModelCall(provider, time.Since(start), err)
	return resp, err
}

func (a *Agent) finish() {
	a.sink.Status("\n⏹ " + a.cat.T(i18n.EndInstruction))
	if a.opts.Bell != nil {
		_, _ = a.opts.Bell.Write(bell)
	}
}

// encodeResult serializes an execution result as JSON without escaping HTML
// characters so code output reaches the model verbatim.
func encodeResult(r code.Result) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode execution result: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func executionOutcome(r code.Result) string {
	switch rc := r["returncode"].(type) {
	case int:
		if rc != 0 {
			return metrics.OutcomeFailed
		}
	case float64:
		if rc != 0 {
			return metrics.OutcomeFailed
		}
	}
	return metrics.OutcomeOK
}
