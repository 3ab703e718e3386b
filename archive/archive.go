// Package archive copies generated MIDI files to S3 when ARCHIVE_BUCKET is
// set. Best effort only: a failed upload is logged and never fails the
// request that produced the file.
package archive

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sunsetsobserver/midi-json-API/constants"
)

func Enabled() bool {
	return constants.GetArchiveBucket() != ""
}

// Store uploads data under a fresh uuid key and returns the key.
func Store(data []byte) (string, error) {
	bucket := constants.GetArchiveBucket()
	if bucket == "" {
		return "", fmt.Errorf("no archive bucket configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(constants.GetAwsRegion()),
	})
	if err != nil {
		return "", fmt.Errorf("could not create an AWS session because %v", err)
	}

	key := uuid.New().String() + ".mid"
	client := s3.New(sess)
	_, err = client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("audio/midi"),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload %v because %v", key, err)
	}
	return key, nil
}
