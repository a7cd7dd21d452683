package field

import (
	"errors"
	"testing"
	"time"

	"github.com/guptam/altimeter/pkg/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RouteTableId", "route_table_id"},
		{"Ipv6Support", "ipv6_support"},
		{"DNSName", "dns_name"},
		{"VpcId", "vpc_id"},
		{"already_snake", "already_snake"},
		{"Name", "name"},
		{"CreationTime", "creation_time"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScalarField(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		data  map[string]any
		want  []link.Link
		err   error
	}{
		{"string", Scalar("Name"), map[string]any{"Name": "Bob"}, []link.Link{simple("name", "Bob")}, nil},
		{"int normalised", Scalar("Age"), map[string]any{"Age": 49}, []link.Link{simple("age", int64(49))}, nil},
		{"bool", Scalar("Main"), map[string]any{"Main": false}, []link.Link{simple("main", false)}, nil},
		{"override", Scalar("Name", WithPredicate("title")), map[string]any{"Name": "x"}, []link.Link{simple("title", "x")}, nil},
		{"missing", Scalar("Name"), map[string]any{}, nil, ErrMissingKey},
		{"null", Scalar("Name"), map[string]any{"Name": nil}, nil, ErrMissingKey},
		{"optional", Scalar("Name", Optional()), map[string]any{}, nil, nil},
		{"default", Scalar("Port", WithDefault(443)), map[string]any{}, []link.Link{simple("port", int64(443))}, nil},
		{"composite", Scalar("Name"), map[string]any{"Name": []any{"a"}}, nil, ErrValueNotAScalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := tt.field.Parse(tt.data, Context{})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, links)
		})
	}
}

func TestScalarField_NotAMapping(t *testing.T) {
	_, err := Scalar("Name").Parse("nope", Context{})
	assert.ErrorIs(t, err, ErrValueNotAMapping)
}

func TestEmbeddedScalar_NeedsParentKey(t *testing.T) {
	_, err := EmbeddedScalar().Parse("cow", Context{})
	assert.ErrorIs(t, err, ErrParentKeyMissing)

	links, err := EmbeddedScalar().Parse("cow", Context{ParentKey: "animal"})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{simple("animal", "cow")}, links)

	links, err = EmbeddedScalar(WithPredicate("beast")).Parse("cow", Context{ParentKey: "animal"})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{simple("beast", "cow")}, links)
}

func TestDictField(t *testing.T) {
	f := Dict("Options", []Field{Scalar("DnsSupport"), Scalar("Ipv6Support")})

	links, err := f.Parse(map[string]any{"Options": map[string]any{"DnsSupport": "enable", "Ipv6Support": "disable"}}, Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		multi("options", simple("dns_support", "enable"), simple("ipv6_support", "disable")),
	}, links)
}

func TestDictField_Errors(t *testing.T) {
	f := Dict("Options", []Field{Scalar("DnsSupport")})

	_, err := f.Parse(map[string]any{}, Context{})
	assert.ErrorIs(t, err, ErrSourceKeyNotFound)

	_, err = f.Parse(map[string]any{"Options": "x"}, Context{})
	assert.ErrorIs(t, err, ErrValueNotAMapping)

	links, err := Dict("Options", []Field{Scalar("DnsSupport")}, Optional()).Parse(map[string]any{}, Context{})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestAnonymousDictField_MergesIntoScope(t *testing.T) {
	f := NewSchema(
		Scalar("State"),
		AnonymousDict("Options", []Field{Scalar("DnsSupport"), Scalar("Ipv6Support")}),
	)

	links, err := f.Parse(map[string]any{
		"State":   "available",
		"Options": map[string]any{"DnsSupport": "enable", "Ipv6Support": "disable"},
	}, Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		simple("state", "available"),
		simple("dns_support", "enable"),
		simple("ipv6_support", "disable"),
	}, links)
}

func TestARNType(t *testing.T) {
	ctx := Context{AccountID: "111122223333", Region: "us-west-2"}

	tests := []struct {
		name    string
		builder ARNType
		ctx     Context
		want    string
		err     error
	}{
		{"regional", ARNType{Service: "ec2", Type: "vpc"}, ctx, "arn:aws:ec2:us-west-2:111122223333:vpc/vpc-1", nil},
		{"partition from context", ARNType{Service: "ec2", Type: "vpc"}, Context{AccountID: "1", Region: "cn-north-1", Partition: "aws-cn"}, "arn:aws-cn:ec2:cn-north-1:1:vpc/vpc-1", nil},
		{"regionless", ARNType{Service: "s3", Type: "bucket", Regionless: true}, ctx, "arn:aws:s3::111122223333:bucket/vpc-1", nil},
		{"global", ARNType{Service: "iam", Type: "role", Global: true}, Context{}, "arn:aws:iam:::role/vpc-1", nil},
		{"missing account", ARNType{Service: "ec2", Type: "vpc"}, Context{Region: "us-west-2"}, "", ErrMissingScanContext},
		{"missing region", ARNType{Service: "ec2", Type: "vpc"}, Context{AccountID: "1"}, "", ErrMissingScanContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.builder.ID("vpc-1", tt.ctx)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			parsed, err := ParseARN(got)
			require.NoError(t, err)
			assert.Equal(t, tt.builder.Service, parsed.Service)
		})
	}
}

func TestResourceLinkFields(t *testing.T) {
	vpc := ARNType{Service: "ec2", Type: "vpc"}
	subnet := ARNType{Service: "ec2", Type: "subnet"}
	ctx := Context{AccountID: "111122223333", Region: "us-west-2"}

	s := NewSchema(
		ResourceLink("VpcId", vpc),
		TransientResourceLink("RoleArn", nil, ValueIsID(), WithPredicate("role")),
		List("SubnetIds", EmbeddedResourceLink(subnet)),
		List("PeerVpcs", EmbeddedTransientResourceLink(vpc, WithPredicate("peer_vpc")), Optional()),
		ResourceLink("KmsKeyId", ARNType{Service: "kms", Type: "key"}, Optional()),
	)

	links, err := s.Parse(map[string]any{
		"VpcId":     "vpc-1",
		"RoleArn":   "arn:aws:iam::111122223333:role/lambda",
		"SubnetIds": []any{"subnet-a", "subnet-b"},
		"PeerVpcs":  []any{"vpc-2"},
	}, ctx)
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		link.ResourceLinkLink{Pred: "vpc", Obj: "arn:aws:ec2:us-west-2:111122223333:vpc/vpc-1"},
		link.TransientResourceLinkLink{Pred: "role", Obj: "arn:aws:iam::111122223333:role/lambda"},
		link.ResourceLinkLink{Pred: "subnet", Obj: "arn:aws:ec2:us-west-2:111122223333:subnet/subnet-a"},
		link.ResourceLinkLink{Pred: "subnet", Obj: "arn:aws:ec2:us-west-2:111122223333:subnet/subnet-b"},
		link.TransientResourceLinkLink{Pred: "peer_vpc", Obj: "arn:aws:ec2:us-west-2:111122223333:vpc/vpc-2"},
	}, links)
}

func TestResourceLinkField_Errors(t *testing.T) {
	vpc := ARNType{Service: "ec2", Type: "vpc"}

	_, err := ResourceLink("VpcId", vpc).Parse(map[string]any{}, Context{})
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = ResourceLink("VpcId", vpc).Parse(map[string]any{"VpcId": 5}, Context{})
	assert.ErrorIs(t, err, ErrValueNotAScalar)

	_, err = ResourceLink("VpcId", vpc).Parse(map[string]any{"VpcId": "vpc-1"}, Context{})
	assert.ErrorIs(t, err, ErrMissingScanContext)
}

func TestTagsField(t *testing.T) {
	links, err := Tags().Parse(map[string]any{
		"Tags": []any{
			map[string]any{"Key": "Name", "Value": "prod"},
			map[string]any{"Key": "Team", "Value": "infra"},
		},
	}, Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		link.TagLink{Pred: "Name", Obj: "prod"},
		link.TagLink{Pred: "Team", Obj: "infra"},
	}, links)

	links, err = TagsFrom("TagSet").Parse(map[string]any{
		"TagSet": map[string]any{"b": "2", "a": "1"},
	}, Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		link.TagLink{Pred: "a", Obj: "1"},
		link.TagLink{Pred: "b", Obj: "2"},
	}, links)

	links, err = Tags().Parse(map[string]any{}, Context{})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTagsField_Errors(t *testing.T) {
	_, err := Tags().Parse(map[string]any{"Tags": "x"}, Context{})
	assert.ErrorIs(t, err, ErrValueNotASequence)

	_, err = Tags().Parse(map[string]any{"Tags": []any{map[string]any{"Value": "v"}}}, Context{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingKey))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []string{"Tags[0]"}, pe.Path)
}

func TestSchema_TimeValues(t *testing.T) {
	created := time.Date(2019, 8, 23, 15, 59, 46, 0, time.UTC)
	links, err := NewSchema(Scalar("CreationTime")).Parse(map[string]any{"CreationTime": created}, Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{simple("creation_time", created)}, links)
}

func TestSchema_NotAMapping(t *testing.T) {
	_, err := NewSchema(Scalar("Name")).Parse([]any{}, Context{})
	assert.ErrorIs(t, err, ErrValueNotAMapping)
}
