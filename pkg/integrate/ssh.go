package integrate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/eda-labs/clab-connector/pkg/util"
)

const (
	sshDialTimeout  = 10 * time.Second
	shellDrainLimit = 10 * time.Second
)

// nodeSession is an SSH connection to a lab node's management address,
// used to push certificates and configuration after onboarding.
type nodeSession struct {
	client   *ssh.Client
	host     string
	password string
}

// nodePasswords orders the SSH password candidates: the configured
// password first when one is given, then the vendor default.
func nodePasswords(configured string) []string {
	const vendorDefault = "admin"
	if configured != "" && configured != vendorDefault {
		return []string{configured, vendorDefault}
	}
	return []string{vendorDefault}
}

// dialNode opens an SSH session, trying each candidate password in
// order. The password that worked is kept for reconnects.
func dialNode(host, user string, passwords []string) (*nodeSession, error) {
	var lastErr error
	for _, password := range passwords {
		config := &ssh.ClientConfig{
			User: user,
			Auth: []ssh.AuthMethod{
				ssh.Password(password),
			},
			// Lab nodes get fresh host keys on every deploy.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         sshDialTimeout,
		}
		client, err := ssh.Dial("tcp", host+":22", config)
		if err == nil {
			util.Debugf("SSH to %s as %s succeeded", host, user)
			return &nodeSession{client: client, host: host, password: password}, nil
		}
		lastErr = err
		util.Debugf("SSH to %s rejected: %v", host, err)
	}
	return nil, fmt.Errorf("SSH dial %s: %w", host, lastErr)
}

func (s *nodeSession) Close() error {
	return s.client.Close()
}

// Upload writes data to a path on the node over SFTP.
func (s *nodeSession) Upload(remotePath string, data []byte) error {
	c, err := sftp.NewClient(s.client)
	if err != nil {
		return fmt.Errorf("SFTP to %s: %w", s.host, err)
	}
	defer c.Close()

	f, err := c.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create %s on %s: %w", remotePath, s.host, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s on %s: %w", remotePath, s.host, err)
	}
	return nil
}

// RunScript feeds commands line by line into an interactive shell,
// pausing between commands so the node CLI keeps up, and returns the
// collected output. The final drain is bounded so a CLI that never
// closes the channel cannot hang the integration.
func (s *nodeSession) RunScript(commands []string, settle time.Duration) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session to %s: %w", s.host, err)
	}
	defer session.Close()

	modes := ssh.TerminalModes{
		ssh.ECHO: 0,
	}
	if err := session.RequestPty("xterm", 40, 200, modes); err != nil {
		return "", fmt.Errorf("request pty on %s: %w", s.host, err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("stdin pipe to %s: %w", s.host, err)
	}
	var output bytes.Buffer
	session.Stdout = &output
	session.Stderr = &output

	if err := session.Shell(); err != nil {
		return "", fmt.Errorf("shell on %s: %w", s.host, err)
	}

	for _, cmd := range commands {
		if _, err := fmt.Fprintln(stdin, cmd); err != nil {
			return output.String(), fmt.Errorf("sending command to %s: %w", s.host, err)
		}
		time.Sleep(settle)
	}
	stdin.Close()

	done := make(chan struct{})
	go func() {
		session.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shellDrainLimit):
		util.Debugf("Shell on %s did not close, continuing with collected output", s.host)
	}
	return output.String(), nil
}
