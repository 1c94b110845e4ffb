// Command awshealth reports EC2 instance status and CloudWatch alarm
// state for one or more AWS regions.
package main

func main() {
	Execute()
}
