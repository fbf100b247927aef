// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"
)

// computeDelay stands in for the work a real handler would do
var computeDelay = 500 * time.Millisecond

// Handler answers with the number of headers the request carried.
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.WithField("path", request.Path).Info("Counting request headers")

	select {
	case <-time.After(computeDelay):
	case <-ctx.Done():
		return events.APIGatewayProxyResponse{}, ctx.Err()
	}

	return events.APIGatewayProxyResponse{
		Body:       fmt.Sprintf("Your request has %d headers", len(request.Headers)),
		StatusCode: http.StatusOK,
	}, nil
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	lambda.Start(Handler)
}
