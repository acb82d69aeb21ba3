// Copyright 2024 Arthur Irene
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fetch retrieves remote JSON payloads over HTTP(S) and s3:// and
// decodes them into Go values.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// getS3 serves s3://bucket/key URLs through the AWS SDK, with the same size
// cap and MIME allowlist as the HTTP path.
func (c *Client) getS3(ctx context.Context, u *url.URL) ([]byte, string, error) {
	bkt := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bkt == "" || key == "" {
		return nil, "", fmt.Errorf("invalid s3 URL: %s", u.String())
	}

	awsConf, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("aws config: %w", err)
	}
	client := s3.NewFromConfig(awsConf)

	goctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	out, err := client.GetObject(goctx, &s3.GetObjectInput{
		Bucket: &bkt,
		Key:    &key,
	})
	if err != nil {
		return nil, "", fmt.Errorf("s3 get: %w", err)
	}
	defer out.Body.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

	// enforce size cap while copying
	lim := io.LimitReader(out.Body, c.opts.MaxSize+1)
	data, err := io.ReadAll(lim)
	if err != nil {
		return nil, "", fmt.Errorf("s3 read: %w", err)
	}
	if int64(len(data)) > c.opts.MaxSize {
		return nil, "", fmt.Errorf("s3 object exceeded limit (%d bytes)", c.opts.MaxSize)
	}

	ctype := ""
	if out.ContentType != nil {
		ctype = *out.ContentType
	}
	if err := checkContentType(ctype, c.opts.AllowedMIMEs); err != nil {
		return nil, ctype, err
	}
	return data, ctype, nil
}
