package db

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/kerngrid/model"
	"github.com/stretchr/testify/assert"
)

type fakeClient struct {
	dynamodbiface.DynamoDBAPI
	items   map[string]map[string]*dynamodb.AttributeValue
	batches []int
	fail    bool
}

func (f *fakeClient) BatchGetItem(input *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
	if f.fail {
		return nil, errors.New("table is gone")
	}
	out := &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]*dynamodb.AttributeValue{}}
	for table, req := range input.RequestItems {
		f.batches = append(f.batches, len(req.Keys))
		for _, key := range req.Keys {
			if item, ok := f.items[*key["PK"].S]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func item(pk, title, composer string, year string) map[string]*dynamodb.AttributeValue {
	res := map[string]*dynamodb.AttributeValue{
		"PK":    {S: aws.String(pk)},
		"Title": {S: aws.String(title)},
	}
	if composer != "" {
		res["Composer"] = &dynamodb.AttributeValue{S: aws.String(composer)}
	}
	if year != "" {
		res["Year"] = &dynamodb.AttributeValue{N: aws.String(year)}
	}
	return res
}

func TestGetScoreMetadatasBatches(t *testing.T) {
	client := &fakeClient{items: map[string]map[string]*dynamodb.AttributeValue{
		"a.mid": item("a.mid", "Air", "Bach", "1731"),
		"l.mid": item("l.mid", "Lament", "", ""),
	}}
	store := NewStoreWithClient(client, "meta")

	names := []string{"a.mid", "b.mid", "c.mid", "d.mid", "e.mid", "f.mid", "g.mid", "h.mid", "i.mid", "j.mid", "k.mid", "l.mid"}
	res, err := store.GetScoreMetadatas(names)

	assert := assert.New(t)
	assert.Nil(err)
	assert.Equal([]int{10, 2}, client.batches)
	assert.Equal(model.ScoreMetadata{Title: "Air", Composer: "Bach", Year: 1731}, res["a.mid"])
	assert.Equal(model.ScoreMetadata{Title: "Lament"}, res["l.mid"])
	assert.Len(res, 2)
}

func TestGetScoreMetadatasError(t *testing.T) {
	store := NewStoreWithClient(&fakeClient{fail: true}, "meta")
	_, err := store.GetScoreMetadatas([]string{"a.mid"})
	assert.NotNil(t, err)
}

func TestAnnotate(t *testing.T) {
	client := &fakeClient{items: map[string]map[string]*dynamodb.AttributeValue{
		"a.mid": item("a.mid", "Air", "Bach", "1731"),
	}}
	store := NewStoreWithClient(client, "meta")
	score := &model.Score{References: []model.Reference{{Key: "OTL", Value: "a"}}}

	assert := assert.New(t)
	assert.Nil(store.Annotate(score, "a.mid"))
	assert.Equal([]model.Reference{
		{Key: "OTL", Value: "Air"},
		{Key: "COM", Value: "Bach"},
		{Key: "ODT", Value: "1731"},
	}, score.References)

	assert.Nil(store.Annotate(score, "unknown.mid"))
	assert.Len(score.References, 3)
}
