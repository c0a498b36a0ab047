package compute

import (
	"platformcli/internal/cloud"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Instance is one owner-tagged virtual machine
type Instance struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	State string `json:"state" yaml:"state"`
}

// Instances is a list result printable as a table
type Instances []Instance

func newInstance(inst types.Instance) Instance {
	name := "N/A"
	for _, tag := range inst.Tags {
		if aws.ToString(tag.Key) == cloud.TagName {
			name = aws.ToString(tag.Value)
			break
		}
	}
	state := ""
	if inst.State != nil {
		state = string(inst.State.Name)
	}
	return Instance{
		ID:    aws.ToString(inst.InstanceId),
		Name:  name,
		Type:  string(inst.InstanceType),
		State: state,
	}
}

// Running counts instances in the running state
func (l Instances) Running() int {
	count := 0
	for _, inst := range l {
		if inst.State == string(types.InstanceStateNameRunning) {
			count++
		}
	}
	return count
}

func (l Instances) Len() int { return len(l) }

func (l Instances) Headers() []string {
	return []string{"ID", "Name", "Type", "State"}
}

func (l Instances) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, inst := range l {
		rows = append(rows, []string{inst.ID, inst.Name, inst.Type, inst.State})
	}
	return rows
}
