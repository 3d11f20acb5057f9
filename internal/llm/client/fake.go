package llmclient

import (
	"context"
	"sync"

	"forgeui/internal/llm"
)

// FakeClient serves scripted responses for offline runs and tests. Complete
// pops the next queued response; an empty queue falls back to a fixed stub
// component that satisfies the default design system.
type FakeClient struct {
	mu        sync.Mutex
	responses []string
	calls     [][]llm.Message
}

func NewFakeClient(responses ...string) *FakeClient {
	return &FakeClient{responses: responses}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([]llm.Message, len(msgs))
	copy(snapshot, msgs)
	f.calls = append(f.calls, snapshot)
	if len(f.responses) == 0 {
		return stubComponent, nil
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	return out, nil
}

// CallCount reports how many completions have been served.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Call returns the messages of the i-th completion (zero-based).
func (f *FakeClient) Call(i int) []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

const stubComponent = `import { Component } from '@angular/core';
import { CommonModule } from '@angular/common';

@Component({
  selector: 'app-root',
  standalone: true,
  imports: [CommonModule],
  templateUrl: './app.component.html',
  styles: [` + "`" + `
    .card {
      font-family: 'Inter', sans-serif;
      background: #ffffff;
      color: #0f172a;
      border-radius: 16px;
      padding: 24px;
    }
  ` + "`" + `]
})
export class AppComponent {}

--- HTML ---
<div class="card">Offline stub component</div>
`
