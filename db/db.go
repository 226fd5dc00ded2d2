// Package db looks up catalog metadata for source MIDI files in DynamoDB.
package db

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"

	"github.com/mirlib/noteseq/constants"
	"github.com/mirlib/noteseq/model"
)

const tableName = "noteseq-metadata"

// batchLimit is the largest key set sent per BatchGetItem call.
const batchLimit = 10

// GetMidiMetadatas fetches metadata records keyed by source file name.
// Missing files are simply absent from the result.
func GetMidiMetadatas(filenames []string) (map[string]model.MidiMetadata, error) {
	res := make(map[string]model.MidiMetadata)
	if len(filenames) == 0 {
		return res, nil
	}
	if len(filenames) > batchLimit {
		return nil, fmt.Errorf("at most %d filenames per batch, got %d", batchLimit, len(filenames))
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, filename := range filenames {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(filename)},
		})
	}

	endpoint := constants.GetMetadataDBEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating DynamoDB session: %w", err)
	}

	client := dynamodb.New(sess)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			tableName: {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		return nil, fmt.Errorf("DynamoDB batch get: %w", err)
	}

	for _, v := range dbres.Responses[tableName] {
		var m model.MidiMetadata
		if v["Year"] != nil && v["Year"].N != nil {
			year, _ := strconv.ParseUint(*v["Year"].N, 10, 32)
			m.Year = uint(year)
		}
		if v["Artist"] != nil && v["Artist"].S != nil {
			m.Artist = *v["Artist"].S
		}
		if v["Release"] != nil && v["Release"].S != nil {
			m.Release = *v["Release"].S
		}
		if v["Title"] != nil && v["Title"].S != nil {
			m.Title = *v["Title"].S
		}
		res[*v["PK"].S] = m
	}
	return res, nil
}
