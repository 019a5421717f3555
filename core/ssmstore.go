package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"golang.org/x/oauth2"
)

// SSMAPI is the Parameter Store surface the token store uses. *ssm.Client
// satisfies it; tests substitute a mock.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// SSMTokenStore keeps the token in an encrypted SSM parameter, for
// Lambda runs where there is no durable filesystem.
type SSMTokenStore struct {
	Param  string
	client SSMAPI
}

func NewSSMTokenStore(ctx context.Context, param string) (*SSMTokenStore, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SSMTokenStore{Param: param, client: ssm.NewFromConfig(awsConfig)}, nil
}

func (s *SSMTokenStore) Load() (*oauth2.Token, error) {
	out, err := s.client.GetParameter(context.Background(), &ssm.GetParameterInput{
		Name:           aws.String(s.Param),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter %s: %w", s.Param, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("%w: parameter %s is empty", ErrCredentialMissing, s.Param)
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(*out.Parameter.Value), &tok); err != nil {
		return nil, fmt.Errorf("parse parameter %s: %w", s.Param, err)
	}
	return &tok, nil
}

func (s *SSMTokenStore) Save(tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	_, err = s.client.PutParameter(context.Background(), &ssm.PutParameterInput{
		Name:      aws.String(s.Param),
		Value:     aws.String(string(b)),
		Type:      types.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("put parameter %s: %w", s.Param, err)
	}
	return nil
}
