package eda

import (
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eda-labs/clab-connector/pkg/util"
)

// TransactionItem is a single operation queued for the next commit.
type TransactionItem map[string]any

func (c *Client) addToTransaction(crType string, payload map[string]any) TransactionItem {
	item := TransactionItem{"type": map[string]any{crType: payload}}
	c.items = append(c.items, item)
	util.Debugf("Queued %s item, %d item(s) in transaction", crType, len(c.items))
	return item
}

// AddCreateToTransaction queues a create of the given YAML resource.
func (c *Client) AddCreateToTransaction(resource string) (TransactionItem, error) {
	value, err := parseResource(resource)
	if err != nil {
		return nil, err
	}
	return c.addToTransaction("create", map[string]any{"value": value}), nil
}

// AddReplaceToTransaction queues a replace of the given YAML resource.
func (c *Client) AddReplaceToTransaction(resource string) (TransactionItem, error) {
	value, err := parseResource(resource)
	if err != nil {
		return nil, err
	}
	return c.addToTransaction("replace", map[string]any{"value": value}), nil
}

// AddDeleteToTransaction queues a delete of the named resource. Empty
// group and version default to the EDA core API.
func (c *Client) AddDeleteToTransaction(namespace, kind, name, group, version string) TransactionItem {
	if group == "" {
		group = CoreGroup
	}
	if version == "" {
		version = CoreVersion
	}
	return c.addToTransaction("delete", map[string]any{
		"gvk": map[string]any{
			"group":   group,
			"version": version,
			"kind":    kind,
		},
		"name":      name,
		"namespace": namespace,
	})
}

func parseResource(resource string) (map[string]any, error) {
	var value map[string]any
	if err := yaml.Unmarshal([]byte(resource), &value); err != nil {
		return nil, fmt.Errorf("parsing resource for transaction: %w", err)
	}
	return value, nil
}

// TransactionSize returns the number of queued transaction items.
func (c *Client) TransactionSize() int {
	return len(c.items)
}

// IsTransactionItemValid runs a single item through the transaction
// validation endpoint. Validation failures are logged, not returned.
func (c *Client) IsTransactionItemValid(item TransactionItem) bool {
	util.Info("Validating transaction item")

	resp, err := c.Post("core/transaction/v1/validate", item, true)
	if err != nil {
		util.Warnf("Validation request failed: %v", err)
		return false
	}
	if resp.StatusCode == http.StatusNoContent {
		resp.Body.Close()
		util.Info("Validation successful")
		return true
	}

	body, err := decodeObject(resp)
	if err != nil {
		util.Warnf("Validation failed with status %d", resp.StatusCode)
		return false
	}
	if code, ok := body["code"]; ok {
		util.Warnf("Validation error (code %v): %q", code, resultMessage(body))
	}
	return false
}

// CommitTransaction submits all queued items as one transaction and
// waits for it to complete. The queue is cleared only when the commit
// succeeds, so a failed commit can be retried or inspected. Returns the
// transaction ID.
func (c *Client) CommitTransaction(description string, dryrun bool) (string, error) {
	payload := map[string]any{
		"description": description,
		"dryrun":      dryrun,
		"resultType":  "normal",
		"retain":      true,
		"crs":         c.items,
	}

	util.Infof("Committing transaction with %d item(s)", len(c.items))

	resp, err := c.Post("core/transaction/v1", payload, true)
	if err != nil {
		return "", err
	}
	body, err := decodeObject(resp)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	id, ok := body["id"]
	if !ok {
		return "", fmt.Errorf("no transaction ID in response %v", body)
	}
	txID := fmt.Sprintf("%v", id)

	util.Infof("Waiting for transaction %s to complete", txID)
	resp, err = c.Get("core/transaction/v1/details/"+txID+"?waitForComplete=true&failOnErrors=true", true)
	if err != nil {
		return "", err
	}
	result, err := decodeObject(resp)
	if err != nil {
		return "", fmt.Errorf("commit details: %w", err)
	}
	if code, ok := result["code"]; ok {
		return "", fmt.Errorf("transaction %s failed (code %v): %s", txID, code, resultMessage(result))
	}

	util.Info("Commit successful")
	c.items = nil
	return txID, nil
}

// RevertTransaction reverts a committed transaction.
func (c *Client) RevertTransaction(txID string) error {
	util.Infof("Reverting transaction %s", txID)
	return c.transactionAction("revert", txID)
}

// RestoreTransaction restores the configuration to the state just
// before the given transaction.
func (c *Client) RestoreTransaction(txID string) error {
	util.Infof("Restoring to transaction %s", txID)
	return c.transactionAction("restore", txID)
}

func (c *Client) transactionAction(action, txID string) error {
	// Make sure the transaction has completed before acting on it.
	resp, err := c.Get("core/transaction/v1/details/"+txID+"?waitForComplete=true", true)
	if err != nil {
		return err
	}
	resp.Body.Close()

	resp, err = c.Post("core/transaction/v1/"+action+"/"+txID, map[string]any{}, true)
	if err != nil {
		return err
	}
	result, err := decodeObject(resp)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if code, ok := result["code"]; ok && !numberEquals(code, 0) {
		return fmt.Errorf("%s of transaction %s failed (code %v): %s",
			action, txID, code, resultMessage(result))
	}
	util.Infof("Transaction %s successful", action)
	return nil
}

// resultMessage flattens the message, details and error list of a
// transaction API result into one string.
func resultMessage(result map[string]any) string {
	var parts []string
	if msg, ok := result["message"].(string); ok && msg != "" {
		parts = append(parts, msg)
	}
	if details, ok := result["details"].(string); ok && details != "" {
		parts = append(parts, details)
	}
	if errs, ok := result["errors"].([]any); ok {
		for _, e := range errs {
			em, _ := e.(map[string]any)
			inner, _ := em["error"].(map[string]any)
			if inner != nil {
				parts = append(parts, fmt.Sprintf("%v %v", inner["message"], inner["details"]))
			}
		}
	}
	return strings.Join(parts, " - ")
}
