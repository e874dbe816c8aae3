package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Request 是展示给用户的待确认请求。
type Request struct {
	CorrelationID string
	Summary       string
	Account       common.Address
	Kind          string
	Deadline      time.Time
}

// Answer 是用户的回应。Approved 为 false 表示拒绝。Secret 的所有权交给调用方，用后清零。
type Answer struct {
	Approved bool
	Secret   []byte
	Reason   string
}

// Prompter 向人展示请求并收集回应，ctx 截止即视为未回应。
type Prompter interface {
	Prompt(ctx context.Context, req Request) (Answer, error)
}

// PrompterFunc 适配普通函数。
type PrompterFunc func(ctx context.Context, req Request) (Answer, error)

// Prompt 实现 Prompter。
func (f PrompterFunc) Prompt(ctx context.Context, req Request) (Answer, error) {
	return f(ctx, req)
}

// ErrPromptBusy 表示终端正被另一个请求占用。
var ErrPromptBusy = errors.New("another prompt is in progress")

// ConsolePrompter 在终端上逐个展示请求，输入空行表示拒绝。
type ConsolePrompter struct {
	out io.Writer

	lines chan string
	once  sync.Once
	in    io.Reader

	mu sync.Mutex
}

// NewConsolePrompter 构造 ConsolePrompter。
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: in, out: out, lines: make(chan string)}
}

func (p *ConsolePrompter) start() {
	p.once.Do(func() {
		go func() {
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				p.lines <- scanner.Text()
			}
			close(p.lines)
		}()
	})
}

// Prompt 实现 Prompter。同一时刻只展示一个请求，后来者排队等待。
func (p *ConsolePrompter) Prompt(ctx context.Context, req Request) (Answer, error) {
	p.start()
	if err := p.lock(ctx); err != nil {
		return Answer{}, err
	}
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "\n--- signature request %s ---\n", req.CorrelationID)
	fmt.Fprintf(p.out, "%s\n", req.Summary)
	fmt.Fprintf(p.out, "account: %s\n", req.Account.Hex())
	fmt.Fprintf(p.out, "expires in %s\n", time.Until(req.Deadline).Round(time.Second))
	fmt.Fprint(p.out, "passphrase (empty line rejects): ")

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out, "\nrequest expired")
		return Answer{}, ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return Answer{}, io.EOF
		}
		line = strings.TrimRight(line, "\r")
		if line == "" {
			return Answer{Reason: "rejected by user"}, nil
		}
		return Answer{Approved: true, Secret: []byte(line)}, nil
	}
}

func (p *ConsolePrompter) lock(ctx context.Context) error {
	for {
		if p.mu.TryLock() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrPromptBusy
		case <-time.After(50 * time.Millisecond):
		}
	}
}
