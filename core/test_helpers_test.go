package core

import (
	"context"
	"errors"
	"testing"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

const (
	testCreator  Identity = "creator_1"
	testMinter   Identity = "minter_1"
	testOutsider Identity = "outsider_1"
)

func testAdministrators() []AdministratorEntry {
	return []AdministratorEntry{
		{Identity: testCreator, Role: RoleCreator},
		{Identity: testMinter, Role: RoleMinter},
	}
}

// newTestService bootstraps a memory backed service with one creator and
// one minter and no validators.
func newTestService(t *testing.T, cfg Config, opts ...Option) *Service {
	t.Helper()
	svc, err := Setup(context.Background(), cfg, Genesis{Administrators: testAdministrators()}, opts...)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func mustCreateCollection(t *testing.T, svc *Service, id CollectionID, name string) {
	t.Helper()
	err := svc.CreateCollection(context.Background(), SignedCaller(testCreator), id, CollectionMetadata{
		Name: name,
		URI:  "https://collections.example/" + name,
	})
	if err != nil {
		t.Fatalf("create collection %d: %v", id, err)
	}
}

func eventNames(t *testing.T, store EventLog) []string {
	t.Helper()
	records, err := store.Events(context.Background(), EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Event.EventName())
	}
	return names
}

func requireErrorIs(t *testing.T, err error, target error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func equalValidators(left []ValidatorID, right ...ValidatorID) bool {
	if len(left) != len(right) {
		return false
	}
	for index := range left {
		if left[index] != right[index] {
			return false
		}
	}
	return true
}
