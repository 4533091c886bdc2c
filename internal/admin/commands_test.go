package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeBackend struct {
	profiles []Profile
	deleted  []string
	failWith error
}

func (f *fakeBackend) ListProfiles(context.Context) ([]Profile, error) {
	return f.profiles, f.failWith
}

func (f *fakeBackend) FindProfile(_ context.Context, id string) (*Profile, error) {
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			return &f.profiles[i], nil
		}
	}
	return nil, ErrProfileNotFound
}

func (f *fakeBackend) FindProfileByEmail(_ context.Context, email string) (*Profile, error) {
	for i := range f.profiles {
		if strings.EqualFold(f.profiles[i].Email, email) {
			return &f.profiles[i], nil
		}
	}
	return nil, ErrProfileNotFound
}

func (f *fakeBackend) Counts(_ context.Context, id string) ([]TableCount, error) {
	return []TableCount{{Table: "test_results", Rows: 3}, {Table: "profiles", Rows: 1}}, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string, progress io.Writer) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.deleted = append(f.deleted, id)
	fmt.Fprintln(progress, "deleted 1 row(s) from profiles")
	return nil
}

func newFake() *fakeBackend {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	return &fakeBackend{profiles: []Profile{
		{ID: "11111111-1111-1111-1111-111111111111", Email: "awa@example.ci", CreatedAt: created},
		{ID: "22222222-2222-2222-2222-222222222222", Email: "koffi@example.ci", CreatedAt: created},
	}}
}

func TestParse(t *testing.T) {
	cases := []struct {
		args    []string
		want    Command
		wantErr bool
	}{
		{[]string{"list"}, Command{Name: "list"}, false},
		{[]string{"show", "abc"}, Command{Name: "show", Arg: "abc"}, false},
		{[]string{"delete-email", "a@b.ci"}, Command{Name: "delete-email", Arg: "a@b.ci"}, false},
		{nil, Command{}, true},
		{[]string{"list", "extra"}, Command{}, true},
		{[]string{"delete"}, Command{}, true},
		{[]string{"show", "a", "b"}, Command{}, true},
		{[]string{"purge"}, Command{}, true},
	}
	for _, tc := range cases {
		got, err := Parse(tc.args)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%v) err = %v", tc.args, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%v) = %+v, want %+v", tc.args, got, tc.want)
		}
	}
}

func TestRunExitCodes(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		args    []string
		backend *fakeBackend
		want    int
	}{
		{"list", []string{"list"}, newFake(), ExitOK},
		{"usage", []string{"nope"}, newFake(), ExitUsage},
		{"missing profile", []string{"show", "missing"}, newFake(), ExitFailure},
		{"backend failure", []string{"list"}, &fakeBackend{failWith: errors.New("connection refused")}, ExitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if got := Run(ctx, tc.backend, tc.args, &out, &errOut); got != tc.want {
				t.Fatalf("exit = %d, want %d (stderr %q)", got, tc.want, errOut.String())
			}
		})
	}
}

func TestShowAndDelete(t *testing.T) {
	ctx := context.Background()
	backend := newFake()

	var out bytes.Buffer
	if code := Run(ctx, backend, []string{"show", backend.profiles[0].ID}, &out, io.Discard); code != ExitOK {
		t.Fatalf("show exit %d", code)
	}
	if !strings.Contains(out.String(), "awa@example.ci") || !strings.Contains(out.String(), "test_results") {
		t.Errorf("unexpected show output:\n%s", out.String())
	}

	out.Reset()
	if code := Run(ctx, backend, []string{"delete-email", "KOFFI@example.ci"}, &out, io.Discard); code != ExitOK {
		t.Fatalf("delete-email exit %d", code)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != backend.profiles[1].ID {
		t.Fatalf("deleted %v", backend.deleted)
	}
	if !strings.HasSuffix(out.String(), "done\n") {
		t.Errorf("missing completion line:\n%s", out.String())
	}
}
