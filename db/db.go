package db

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// Store reads score metadata keyed by source file name.
type Store struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func Enabled() bool {
	return constants.GetMetadataEndpoint() != ""
}

// NewStore connects to the table configured in the environment.
func NewStore() (*Store, error) {
	endpoint := constants.GetMetadataEndpoint()
	if endpoint == "" {
		return nil, errors.New("no metadata endpoint configured")
	}
	session, err := session.NewSession(&aws.Config{
		Region:   aws.String(constants.GetMetadataRegion()),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, errors.New("Could not create a new DynamoDB session because " + err.Error())
	}
	return NewStoreWithClient(dynamodb.New(session), constants.GetMetadataTable()), nil
}

func NewStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *Store {
	return &Store{client: client, table: table}
}

// GetScoreMetadatas looks names up in batches. Names the table does not
// know are missing from the result.
func (s *Store) GetScoreMetadatas(names []string) (map[string]model.ScoreMetadata, error) {
	res := make(map[string]model.ScoreMetadata)
	for start := 0; start < len(names); start += constants.MetadataBatchSize {
		end := start + constants.MetadataBatchSize
		if end > len(names) {
			end = len(names)
		}
		if err := s.getBatch(names[start:end], res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Store) getBatch(names []string, res map[string]model.ScoreMetadata) error {
	var keys []map[string]*dynamodb.AttributeValue
	for _, name := range names {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(name),
		}
		keys = append(keys, key)
	}

	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			s.table: {Keys: keys},
		},
	}
	dbres, err := s.client.BatchGetItem(input)
	if err != nil {
		return errors.New(fmt.Sprintf("Error from DynamoDB: %s", err.Error()))
	}

	for _, v := range dbres.Responses[s.table] {
		pk := stringAttr(v, "PK")
		if pk == "" {
			continue
		}
		var m model.ScoreMetadata
		if year := v["Year"]; year != nil && year.N != nil {
			parsed, _ := strconv.ParseUint(*year.N, 10, 32)
			m.Year = uint(parsed)
		}
		m.Composer = stringAttr(v, "Composer")
		m.Release = stringAttr(v, "Release")
		m.Title = stringAttr(v, "Title")
		res[pk] = m
	}
	return nil
}

func stringAttr(item map[string]*dynamodb.AttributeValue, name string) string {
	if v := item[name]; v != nil && v.S != nil {
		return *v.S
	}
	return ""
}

// Annotate adds the metadata of name to the references of score.
func (s *Store) Annotate(score *model.Score, name string) error {
	found, err := s.GetScoreMetadatas([]string{name})
	if err != nil {
		return err
	}
	if m, ok := found[name]; ok {
		for _, ref := range m.References() {
			score.SetReference(ref.Key, ref.Value)
		}
	}
	return nil
}
