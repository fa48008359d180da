package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSM struct {
	values  map[string]string
	batches [][]string
	err     error
}

func (f *fakeSSM) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	f.batches = append(f.batches, in.Names)
	if f.err != nil {
		return nil, f.err
	}
	if !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("decryption not requested")
	}
	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		if v, ok := f.values[name]; ok {
			out.Parameters = append(out.Parameters, ssmtypes.Parameter{Name: aws.String(name), Value: aws.String(v)})
		} else {
			out.InvalidParameters = append(out.InvalidParameters, name)
		}
	}
	return out, nil
}

func TestSSMProviderBatches(t *testing.T) {
	client := &fakeSSM{values: map[string]string{}}
	keys := make([]string, 23)
	for i := range keys {
		keys[i] = fmt.Sprintf("/prod/p%d", i)
		client.values[keys[i]] = fmt.Sprintf("v%d", i)
	}

	got, err := NewSSMProvider(client).GetParametersBatch(context.Background(), keys)
	if err != nil {
		t.Fatalf("GetParametersBatch returned error: %v", err)
	}
	if len(client.batches) != 3 {
		t.Errorf("made %d calls, want 3", len(client.batches))
	}
	if len(client.batches[2]) != 3 {
		t.Errorf("last batch has %d keys, want 3", len(client.batches[2]))
	}
	if len(got) != 23 || got["/prod/p22"] != "v22" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestSSMProviderOmitsUnknown(t *testing.T) {
	client := &fakeSSM{values: map[string]string{"/a": "1"}}

	got, err := NewSSMProvider(client).GetParametersBatch(context.Background(), []string{"/a", "/b"})
	if err != nil {
		t.Fatalf("GetParametersBatch returned error: %v", err)
	}
	if _, ok := got["/b"]; ok || got["/a"] != "1" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestSSMProviderEmptyKeys(t *testing.T) {
	client := &fakeSSM{}
	got, err := NewSSMProvider(client).GetParametersBatch(context.Background(), nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("GetParametersBatch(nil) = %v, %v; want empty map", got, err)
	}
	if len(client.batches) != 0 {
		t.Errorf("made %d calls for no keys", len(client.batches))
	}
}

func TestSSMProviderErrors(t *testing.T) {
	if _, err := NewSSMProvider(&fakeSSM{err: errors.New("AccessDenied")}).
		GetParametersBatch(context.Background(), []string{"/a"}); err == nil {
		t.Error("expected client error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSSMProvider(&fakeSSM{}).GetParametersBatch(ctx, []string{"/a"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
