package db

import (
	"context"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/kernprep/logger"
	"github.com/jsphweid/kernprep/model"
	"github.com/pkg/errors"
)

const lookupTimeout = 5 * time.Second

// Catalog reads explicit keys from a DynamoDB table keyed by file name.
// Items look like {"PK": "deut0567.mid", "Key": "D major"}.
type Catalog struct {
	Client dynamodbiface.DynamoDBAPI
	Table  string
	Log    logger.Logger
}

type CatalogConfig struct {
	Table    string
	Region   string
	Endpoint string
}

func NewCatalog(cfg CatalogConfig, log logger.Logger) (*Catalog, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return &Catalog{Client: dynamodb.New(sess), Table: cfg.Table, Log: log}, nil
}

func (c *Catalog) lookup(ctx context.Context, name string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	out, err := c.Client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.Table),
		Key: map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(name)},
		},
	})
	if err != nil {
		return "", false, errors.Wrap(err, "error from DynamoDB")
	}
	if out.Item == nil {
		return "", false, nil
	}
	v, ok := out.Item["Key"]
	if !ok || v.S == nil {
		return "", false, nil
	}
	return *v.S, true, nil
}

// ExplicitKey treats lookup failures and unparsable values as a missing key
// so the score falls through to estimation.
func (c *Catalog) ExplicitKey(ctx context.Context, s *model.Score) (model.Key, bool) {
	name := filepath.Base(s.Source)
	raw, ok, err := c.lookup(ctx, name)
	if err != nil {
		if c.Log != nil {
			c.Log.Warn("catalog lookup failed", "file", name, "err", err)
		}
		return model.Key{}, false
	}
	if !ok {
		return model.Key{}, false
	}
	k, err := model.ParseKey(raw)
	if err != nil {
		if c.Log != nil {
			c.Log.Warn("catalog key unreadable", "file", name, "value", raw, "err", err)
		}
		return model.Key{}, false
	}
	return k, true
}
