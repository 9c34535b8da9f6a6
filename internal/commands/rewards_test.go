package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questctl/internal/commands"
	"questctl/internal/exitcode"
	"questctl/internal/service"
	"questctl/internal/testutil"
)

func rewardFixture() *testutil.FakeService {
	qty := 5
	svc := testutil.NewFakeService()
	svc.AddReward(service.Reward{ID: "r1", Title: "Sticker pack", RewardType: "physical", PointsCost: 100, QuantityAvailable: &qty, QuantityClaimed: 2, IsActive: true})
	svc.AddReward(service.Reward{ID: "r2", Title: "Discord role", RewardType: "digital", PointsCost: 50, IsActive: true})
	return svc
}

func TestRewardsCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, newConfig(t), &commands.RewardsCmd{}, rewardFixture())

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Sticker pack")
	assert.Contains(t, stdout, "2/5")
	assert.Contains(t, stdout, "0/∞")
}

func TestRewardsCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, newConfig(t), &commands.RewardsCmd{}, testutil.NewFakeService())

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "no rewards found\n", stdout)
}

func TestAddRewardCommand_UnlimitedByDefault(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, newConfig(t), &commands.AddRewardCmd{}, svc,
		"--title", "Badge", "--cost", "30")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "🎁 Reward \"Badge\" created. (fake-1)\n", stdout)
	got := svc.Rewards()[0]
	assert.Equal(t, 30, got.PointsCost)
	assert.Equal(t, "digital", got.RewardType)
	assert.Nil(t, got.QuantityAvailable)
	assert.True(t, got.IsActive)
}

func TestAddRewardCommand_Limited(t *testing.T) {
	svc := testutil.NewFakeService()

	_, _, code := runCommand(t, newConfig(t), &commands.AddRewardCmd{}, svc,
		"--title", "Hoodie", "--cost", "500", "--quantity", "3", "--type", "physical", "--inactive")

	require.Equal(t, exitcode.Success, code)
	got := svc.Rewards()[0]
	require.NotNil(t, got.QuantityAvailable)
	assert.Equal(t, 3, *got.QuantityAvailable)
	assert.False(t, got.IsActive)
}

func TestAddRewardCommand_Validation(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, newConfig(t), &commands.AddRewardCmd{}, svc, "--cost", "5")
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: reward title required\n", stderr)

	_, stderr, code = runCommand(t, newConfig(t), &commands.AddRewardCmd{}, svc, "--title", "x", "--cost", "-5")
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: invalid cost: -5\n", stderr)
	assert.Zero(t, svc.Calls("CreateReward"))
}

func TestEditRewardCommand(t *testing.T) {
	svc := rewardFixture()

	stdout, stderr, code := runCommand(t, newConfig(t), &commands.EditRewardCmd{}, svc, "--cost", "80", "r1")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "🎁 Reward \"Sticker pack\" updated.\n", stdout)
	got := svc.Rewards()[0]
	assert.Equal(t, 80, got.PointsCost)
	require.NotNil(t, got.QuantityAvailable)
	assert.Equal(t, 5, *got.QuantityAvailable)
	assert.Equal(t, "physical", got.RewardType)
}

func TestEditRewardCommand_MakeUnlimited(t *testing.T) {
	svc := rewardFixture()

	_, _, code := runCommand(t, newConfig(t), &commands.EditRewardCmd{}, svc, "--quantity", "-1", "r1")

	require.Equal(t, exitcode.Success, code)
	assert.Nil(t, svc.Rewards()[0].QuantityAvailable)
}

func TestEditRewardCommand_NotFound(t *testing.T) {
	_, stderr, code := runCommand(t, newConfig(t), &commands.EditRewardCmd{}, rewardFixture(), "--cost", "1", "r9")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: reward not found: r9\n", stderr)
}

func TestRmRewardCommand_Deactivates(t *testing.T) {
	svc := rewardFixture()

	stdout, _, code := runCommand(t, newConfig(t), &commands.RmRewardCmd{}, svc, "r2")

	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "🗑 Reward deactivated!\n", stdout)
	rewards := svc.Rewards()
	require.Len(t, rewards, 2)
	assert.False(t, rewards[1].IsActive)
	assert.Equal(t, "Discord role", rewards[1].Title)
}

func TestRmRewardCommand_NoID(t *testing.T) {
	_, stderr, code := runCommand(t, newConfig(t), &commands.RmRewardCmd{}, rewardFixture())

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: reward id required\n", stderr)
}
