package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRun_CheckpointPerStep(t *testing.T) {
	saver := NewMemorySaver[testState]()

	g := New(testMerge).
		AddNode("a", visit("a")).
		AddNode("b", visit("b")).
		AddEdge("a", "b").
		AddEdge("b", EndNode).
		SetEntry("a")

	runner, err := g.Compile(RunConfig[testState]{Saver: saver})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := runner.Run(context.Background(), "run-1", testState{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Финальный checkpoint указывает на терминальный узел
	cp, found, err := saver.Load(context.Background(), "run-1")
	if err != nil || !found {
		t.Fatalf("expected final checkpoint, found=%v err=%v", found, err)
	}
	if cp.Next != EndNode {
		t.Errorf("expected next=%s, got %s", EndNode, cp.Next)
	}
	if len(cp.State.log) != 2 {
		t.Errorf("expected 2 executed nodes in checkpoint, got %d", len(cp.State.log))
	}
}

func TestRun_ResumeFromCheckpoint(t *testing.T) {
	saver := NewMemorySaver[testState]()
	failB := true
	nodeErr := errors.New("boom")

	build := func() (*Runner[testState, testDelta], error) {
		g := New(testMerge).
			AddNode("a", visit("a")).
			AddNode("b", func(_ context.Context, _ testState) (testDelta, error) {
				if failB {
					return testDelta{}, nodeErr
				}
				return testDelta{log: []string{"b"}}, nil
			}).
			AddNode("c", visit("c")).
			AddEdge("a", "b").
			AddEdge("b", "c").
			AddEdge("c", EndNode).
			SetEntry("a")
		return g.Compile(RunConfig[testState]{Saver: saver})
	}

	runner, err := build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Первая попытка: b падает, checkpoint остаётся после a
	if _, err := runner.Run(context.Background(), "run-1", testState{}); !errors.Is(err, nodeErr) {
		t.Fatalf("expected node error, got %v", err)
	}

	// Вторая попытка: возобновление с узла b, узел a не повторяется
	failB = false
	final, err := runner.Run(context.Background(), "run-1", testState{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := strings.Join(final.log, ",")
	if got != "a,b,c" {
		t.Errorf("expected a,b,c (a executed once), got %s", got)
	}
}

func TestRun_ResumeFinishedRun(t *testing.T) {
	saver := NewMemorySaver[testState]()

	g := New(testMerge).
		AddNode("a", visit("a")).
		AddEdge("a", EndNode).
		SetEntry("a")

	runner, err := g.Compile(RunConfig[testState]{Saver: saver})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := runner.Run(context.Background(), "run-1", testState{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Повторный Run завершённого run возвращает checkpoint без выполнения узлов
	final, err := runner.Run(context.Background(), "run-1", testState{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(final.log) != 1 {
		t.Errorf("expected node a executed exactly once, got log %v", final.log)
	}
}

func TestMemorySaver_IndependentRuns(t *testing.T) {
	saver := NewMemorySaver[testState]()
	ctx := context.Background()

	if err := saver.Save(ctx, "run-1", Checkpoint[testState]{Next: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, found, _ := saver.Load(ctx, "run-2"); found {
		t.Error("run-2 should have no checkpoint")
	}

	cp, found, _ := saver.Load(ctx, "run-1")
	if !found || cp.Next != "x" {
		t.Errorf("expected checkpoint next=x, found=%v next=%s", found, cp.Next)
	}
}
