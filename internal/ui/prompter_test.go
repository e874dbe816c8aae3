package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func consoleRequest() Request {
	return Request{
		CorrelationID: "corr-1",
		Summary:       "transfer 1 ETH",
		Account:       common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Deadline:      time.Now().Add(time.Minute),
	}
}

func TestConsolePrompterApproves(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePrompter(strings.NewReader("secret\n"), &out)

	answer, err := p.Prompt(context.Background(), consoleRequest())
	require.NoError(t, err)
	require.True(t, answer.Approved)
	require.Equal(t, []byte("secret"), answer.Secret)
	require.Contains(t, out.String(), "transfer 1 ETH")
	require.Contains(t, out.String(), "corr-1")
}

func TestConsolePrompterEmptyLineRejects(t *testing.T) {
	p := NewConsolePrompter(strings.NewReader("\n"), io.Discard)

	answer, err := p.Prompt(context.Background(), consoleRequest())
	require.NoError(t, err)
	require.False(t, answer.Approved)
	require.Empty(t, answer.Secret)
}

func TestConsolePrompterExpires(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	p := NewConsolePrompter(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.Prompt(ctx, consoleRequest())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConsolePrompterEOF(t *testing.T) {
	p := NewConsolePrompter(strings.NewReader(""), io.Discard)
	_, err := p.Prompt(context.Background(), consoleRequest())
	require.ErrorIs(t, err, io.EOF)
}
